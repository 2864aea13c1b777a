package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alexanderramin/tempo/internal/contract"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/importer"
	"github.com/alexanderramin/tempo/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	limits   importer.Limits
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, limits importer.Limits, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, limits: limits, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportFile(ctx context.Context, req contract.ImportRequest) (*contract.ImportResult, error) {
	doc, err := importer.LoadDocument(req.Path)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	limits := req.Limits
	if limits == (importer.Limits{}) {
		limits = s.limits
	}
	return s.importDocument(ctx, doc, importer.Options{Strict: req.Strict, Limits: limits})
}

func (s *importService) ImportDocument(ctx context.Context, doc *importer.Document, strict bool) (*contract.ImportResult, error) {
	return s.importDocument(ctx, doc, importer.Options{Strict: strict, Limits: s.limits})
}

// importDocument builds the project, schedules it and stores project,
// network and baselines in one transaction.
func (s *importService) importDocument(ctx context.Context, doc *importer.Document, opts importer.Options) (result *contract.ImportResult, err error) {
	ctx, uc := startUseCase(ctx, s.observer, "import-project", map[string]any{"strict": opts.Strict})
	defer func() { uc.end(err) }()

	built, err := importer.Build(doc, opts)
	if err != nil {
		return nil, err
	}
	project := built.Project
	if _, err := reschedule(built.Graph); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		projects := repository.NewSQLiteProjectRepo(tx)
		if project.ShortID == "" {
			existing, err := projects.List(ctx)
			if err != nil {
				return err
			}
			project.ShortID = deriveShortID(project.Name, existing)
		} else if other, err := projects.GetByShortID(ctx, project.ShortID); err == nil {
			return domain.Errorf(domain.ErrValidation, domain.Entity{Type: domain.EntityProject, ID: project.ShortID},
				"short ID %s is already used by %q", project.ShortID, other.Name)
		}
		if err := validateProject(&project); err != nil {
			return err
		}
		if err := projects.Create(ctx, &project); err != nil {
			return err
		}
		if err := repository.NewSQLiteNetworkRepo(tx).Save(ctx, project.ID, built.Graph.Snapshot()); err != nil {
			return err
		}
		baselines := repository.NewSQLiteBaselineRepo(tx)
		for _, b := range built.Baselines {
			b.ID = uuid.New().String()
			b.ProjectID = project.ID
			if err := baselines.Create(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &contract.ImportResult{
		Project:         &project,
		TaskCount:       built.Graph.Len(),
		ResourceCount:   len(built.Graph.Resources()),
		DependencyCount: len(built.Graph.Edges()),
		BaselineCount:   len(built.Baselines),
		Issues:          built.Issues,
	}
	uc.set("project_id", project.ID)
	uc.set("tasks", result.TaskCount)
	uc.set("issues", len(result.Issues))
	return result, nil
}

// deriveShortID builds an id from the first letters of name and the lowest
// free two-digit suffix, e.g. "Office Move" -> OFF01.
func deriveShortID(name string, existing []*domain.Project) string {
	var letters []rune
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p.ShortID] = true
	}
	for n := 1; ; n++ {
		id := fmt.Sprintf("%s%02d", string(letters), n)
		if !taken[id] {
			return id
		}
	}
}
