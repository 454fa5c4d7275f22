package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pagequeue/internal/domain"
	"github.com/phrazzld/pagequeue/internal/store"
)

// Recover re-enqueues tasks left unfinished by a previous run. Tasks still
// in the new state are enqueued as they are; tasks found working are reset
// to new first. Tasks whose type has no processor, or that cannot be
// enqueued, are logged and skipped. It returns the number of tasks enqueued.
func Recover(
	ctx context.Context,
	tasks store.TaskStore,
	processors []Enqueuer,
	logger *slog.Logger,
) (int, error) {
	byType := make(map[string]Enqueuer, len(processors))
	for _, p := range processors {
		byType[p.TaskType()] = p
	}

	pending, err := tasks.GetTasksByStatus(ctx, domain.TaskStatusNew)
	if err != nil {
		return 0, fmt.Errorf("failed to get new tasks: %w", err)
	}
	interrupted, err := tasks.GetTasksByStatus(ctx, domain.TaskStatusWorking)
	if err != nil {
		return 0, fmt.Errorf("failed to get working tasks: %w", err)
	}

	logger.Info("recovering unfinished tasks",
		"new_count", len(pending),
		"working_count", len(interrupted))

	for _, task := range interrupted {
		if err := task.SetStatus(domain.TaskStatusNew); err != nil {
			return 0, err
		}
		if err := tasks.SaveTask(ctx, task); err != nil {
			logger.Error("failed to reset working task status",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
			continue
		}
		pending = append(pending, task)
	}

	requeued := 0
	for _, task := range pending {
		p, ok := byType[task.Type()]
		if !ok {
			logger.Warn("no processor for recovered task",
				"task_id", task.ID(),
				"task_type", task.Type())
			continue
		}
		if err := p.Enqueue(ctx, task); err != nil {
			logger.Error("failed to requeue task",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
			continue
		}
		requeued++
	}

	return requeued, nil
}
