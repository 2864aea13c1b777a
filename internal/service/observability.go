package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes service use-case events to the provided writer.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// NewSlogUseCaseObserver reports events through an existing logger.
func NewSlogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{logger: logger}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "service_use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "service_use_case", attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

var tracer = otel.Tracer("tempo.service")

// useCase tracks one service call as a span and, when it finishes, a
// UseCaseEvent. Fields may be added until end is called.
type useCase struct {
	ctx      context.Context
	span     trace.Span
	observer UseCaseObserver
	name     string
	started  time.Time
	fields   map[string]any
}

func startUseCase(ctx context.Context, observer UseCaseObserver, name string, fields map[string]any) (context.Context, *useCase) {
	if fields == nil {
		fields = make(map[string]any)
	}
	ctx, span := tracer.Start(ctx, "service."+name)
	return ctx, &useCase{
		ctx:      ctx,
		span:     span,
		observer: observer,
		name:     name,
		started:  time.Now().UTC(),
		fields:   fields,
	}
}

func (u *useCase) set(key string, value any) {
	u.fields[key] = value
}

func (u *useCase) end(err error) {
	attrs := make([]attribute.KeyValue, 0, len(u.fields))
	for k, v := range u.fields {
		attrs = append(attrs, attribute.String(k, fmt.Sprint(v)))
	}
	u.span.SetAttributes(attrs...)
	if err != nil {
		u.span.RecordError(err)
		u.span.SetStatus(codes.Error, err.Error())
	}
	u.span.End()

	u.observer.ObserveUseCase(u.ctx, UseCaseEvent{
		Name:      u.name,
		StartedAt: u.started,
		Duration:  time.Since(u.started),
		Success:   err == nil,
		Err:       err,
		Fields:    u.fields,
	})
}
