package contract

import "github.com/alexanderramin/tempo/internal/app"

type PlanResult = app.PlanResult

type ErrorCode = app.ErrorCode

const (
	ErrNothingToUndo ErrorCode = app.ErrNothingToUndo
	ErrNothingToRedo ErrorCode = app.ErrNothingToRedo
	ErrNotConfirmed  ErrorCode = app.ErrNotConfirmed
)

type UseCaseError = app.UseCaseError
