package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/metalagman/taskq/internal/config"
	"github.com/metalagman/taskq/internal/db"
	"github.com/metalagman/taskq/internal/storage/filestore"
	"github.com/metalagman/taskq/internal/task"
)

// openPersister builds the configured storage backend.
func (a *app) openPersister(ctx context.Context) (task.Persister, func(), error) {
	path := a.cfg.StoragePath(a.root)
	switch a.cfg.Storage.Backend {
	case config.BackendSQLite:
		conn, err := db.Open(ctx, path)
		if err != nil {
			return nil, func() {}, &task.IOError{Op: "open database", Path: path, Err: err}
		}
		return db.NewStore(conn, path), func() { _ = conn.Close() }, nil
	case config.BackendFile, "":
		format, err := filestore.ParseFormat(a.cfg.Storage.Format, path)
		if err != nil {
			return nil, func() {}, err
		}
		store := filestore.New(path, filestore.Options{
			Format:      format,
			LockTimeout: a.cfg.Storage.LockTimeout,
		})
		log.Debug().Str("path", store.Path()).Str("format", string(format)).Msg("using task document")
		return store, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
}

// openService loads the task set from storage.
func (a *app) openService(ctx context.Context) (*task.Service, func(), error) {
	p, closeFn, err := a.openPersister(ctx)
	if err != nil {
		return nil, closeFn, err
	}
	svc, err := task.Open(ctx, p)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	log.Debug().Int("tasks", svc.Store().Len()).Msg("service ready")
	return svc, closeFn, nil
}
