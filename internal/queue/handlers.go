// Package queue carries the background work between the API and the
// worker process: scan processing and security-event writes.
package queue

import (
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandlersRegistry collects task handlers before the worker starts.
type HandlersRegistry struct {
	mux   *asynq.ServeMux
	tasks []string
}

func NewHandlersRegistry() *HandlersRegistry {
	return &HandlersRegistry{mux: asynq.NewServeMux()}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, handler)
	r.tasks = append(r.tasks, taskType)
	slog.Info("registered task handler", "task", taskType)
}

func (r *HandlersRegistry) Tasks() []string {
	return r.tasks
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}
