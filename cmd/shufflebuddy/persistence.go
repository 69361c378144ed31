package main

import (
	"context"
	"fmt"
	"io"

	"github.com/lbp0200/shufflebuddy/backend/badgerstate"
	"github.com/lbp0200/shufflebuddy/backend/redisstate"
	"github.com/lbp0200/shufflebuddy/backend/sqlitestate"
	"github.com/lbp0200/shufflebuddy/internal/config"
	"github.com/lbp0200/shufflebuddy/shuffle"
)

// persistence 把不同后端统一成 load/save/close
type persistence struct {
	load  func(*shuffle.Store) error
	save  func(*shuffle.Store) error
	close func() error
}

type closingBackend interface {
	shuffle.Backend
	io.Closer
}

func openPersistence(ctx context.Context, cfg *config.Config) (*persistence, error) {
	var (
		backend closingBackend
		err     error
	)
	switch cfg.Backend {
	case "", config.BackendFile:
		return &persistence{
			load:  func(s *shuffle.Store) error { return s.Load(cfg.StateFile) },
			save:  func(s *shuffle.Store) error { return s.Save("") },
			close: func() error { return nil },
		}, nil
	case config.BackendBadger:
		backend, err = badgerstate.Open(cfg.BadgerDir)
	case config.BackendSQLite:
		backend, err = sqlitestate.Open(cfg.SQLitePath)
	case config.BackendRedis:
		backend, err = redisstate.Dial(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}

	name := cfg.SnapshotName
	return &persistence{
		load:  func(s *shuffle.Store) error { return s.LoadFrom(ctx, backend, name) },
		save:  func(s *shuffle.Store) error { return s.SaveTo(ctx, backend, name) },
		close: backend.Close,
	}, nil
}
