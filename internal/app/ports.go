package app

import (
	"context"

	"github.com/alexanderramin/tempo/internal/importer"
)

type SimulateUseCase interface {
	Simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, error)
}

type ImportProjectUseCase interface {
	ImportFile(ctx context.Context, req ImportRequest) (*ImportResult, error)
	ImportDocument(ctx context.Context, doc *importer.Document, strict bool) (*ImportResult, error)
}

type ExportProjectUseCase interface {
	Export(ctx context.Context, projectID string) (*importer.Document, error)
}
