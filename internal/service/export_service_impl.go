package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/alexanderramin/tempo/internal/repository"
)

type exportService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewExportService(uow db.UnitOfWork, observers ...UseCaseObserver) ExportService {
	return &exportService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *exportService) Export(ctx context.Context, projectID string) (doc *importer.Document, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "export-project", map[string]any{"project_id": projectID})
	defer func() { uc.end(err) }()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		ws, err := loadWorkspace(ctx, tx, projectID)
		if err != nil {
			return err
		}
		if _, err := reschedule(ws.graph); err != nil {
			return err
		}
		baselines, err := repository.NewSQLiteBaselineRepo(tx).ListByProject(ctx, projectID)
		if err != nil {
			return err
		}
		doc = importer.Export(*ws.project, ws.graph, baselines)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.set("tasks", len(doc.Tasks))
	return doc, nil
}

func (s *exportService) ExportFile(ctx context.Context, projectID, path string) error {
	doc, err := s.Export(ctx, projectID)
	if err != nil {
		return err
	}
	if err := importer.SaveDocument(path, doc); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}

