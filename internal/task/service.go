package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Service couples a Store with a Persister. Every successful mutation is
// followed by a full save.
type Service struct {
	store     *Store
	persister Persister
}

// Open loads the persisted task set into a new store.
func Open(ctx context.Context, p Persister) (*Service, error) {
	tasks, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	store := NewStore()
	for _, t := range tasks {
		if err := store.Insert(t); err != nil {
			var dup *DuplicateError
			var invalid *ValidationError
			if errors.As(err, &dup) || errors.As(err, &invalid) {
				return nil, &CorruptionError{Err: err}
			}
			return nil, err
		}
	}
	log.Debug().Int("count", store.Len()).Msg("tasks loaded")
	return &Service{store: store, persister: p}, nil
}

// Store exposes the underlying in-memory store for read access.
func (s *Service) Store() *Store {
	return s.store
}

// Add inserts a task and saves. When saving fails the task is removed again.
func (s *Service) Add(ctx context.Context, d Draft) (Task, error) {
	t, err := s.store.Add(d)
	if err != nil {
		return Task{}, err
	}
	if err := s.save(ctx); err != nil {
		s.store.discard(t.Name)
		return Task{}, err
	}
	log.Debug().Str("task", t.Name).Int("priority", t.Priority).Str("due", t.DueString()).Msg("task added")
	return t, nil
}

// Complete removes a task and saves. When saving fails the task is restored.
func (s *Service) Complete(ctx context.Context, name string) (Task, error) {
	t, err := s.store.Complete(name)
	if err != nil {
		return Task{}, err
	}
	if err := s.save(ctx); err != nil {
		if restoreErr := s.store.Insert(t); restoreErr != nil {
			return Task{}, errors.Join(err, restoreErr)
		}
		return Task{}, err
	}
	log.Debug().Str("task", t.Name).Msg("task completed")
	return t, nil
}

// List returns all tasks sorted by order.
func (s *Service) List(order Order) []Task {
	return s.store.List(order)
}

// Peek returns the most urgent task.
func (s *Service) Peek() (Task, error) {
	return s.store.Peek()
}

func (s *Service) save(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.store.Tasks()); err != nil {
		var ioErr *IOError
		if errors.As(err, &ioErr) {
			return err
		}
		return &IOError{Op: "save tasks", Err: err}
	}
	return nil
}
