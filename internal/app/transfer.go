package app

import (
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/importer"
)

type ImportRequest struct {
	Path   string
	Strict bool
	// Limits overrides the importer's configured limits when non-zero.
	Limits importer.Limits
}

func NewImportRequest(path string) ImportRequest {
	return ImportRequest{Path: path}
}

type ImportResult struct {
	Project         *domain.Project
	TaskCount       int
	ResourceCount   int
	DependencyCount int
	BaselineCount   int
	// Issues lists the entries skipped in lenient mode.
	Issues []importer.Issue
}
