package contract

import (
	"time"

	"github.com/alexanderramin/tempo/internal/app"
)

type CreateProjectRequest = app.CreateProjectRequest

func NewCreateProjectRequest(name, shortID string, start time.Time) CreateProjectRequest {
	return app.NewCreateProjectRequest(name, shortID, start)
}

type ProjectSettings = app.ProjectSettings
