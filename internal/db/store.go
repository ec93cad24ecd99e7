package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/homeclean/internal/metrics"
)

// Store is a set of named collections of JSON records kept in SQLite. Every
// method outside Transaction runs in its own transaction, so each call is
// atomic on its own but not with respect to other calls.
type Store struct {
	db      *sql.DB
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Transaction runs fn with access to the named collections. Everything fn does
// commits together when it returns nil; an error or panic rolls it all back.
func (s *Store) Transaction(ctx context.Context, collections []string, mode Mode, fn func(tx *Tx) error) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveTransaction(mode.String(), start, err) }()

	scope := make(map[string]*Collection, len(collections))
	for _, name := range collections {
		c, ok := lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCollection, name)
		}
		scope[name] = c
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	tx := &Tx{tx: sqlTx, scope: scope, mode: mode, metrics: s.metrics}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.logger.Error("failed to roll back transaction", "collections", collections, "error", rbErr)
		}
		s.logger.Debug("transaction rolled back", "collections", collections, "error", err)
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, record any) (key Key, err error) {
	err = s.Transaction(ctx, []string{collection}, ReadWrite, func(tx *Tx) error {
		var txErr error
		key, txErr = tx.Add(ctx, collection, record)
		return txErr
	})
	return key, err
}

func (s *Store) Put(ctx context.Context, collection string, record any) (key Key, err error) {
	err = s.Transaction(ctx, []string{collection}, ReadWrite, func(tx *Tx) error {
		var txErr error
		key, txErr = tx.Put(ctx, collection, record)
		return txErr
	})
	return key, err
}

func (s *Store) Get(ctx context.Context, collection string, key Key) (doc json.RawMessage, err error) {
	err = s.Transaction(ctx, []string{collection}, ReadOnly, func(tx *Tx) error {
		var txErr error
		doc, txErr = tx.Get(ctx, collection, key)
		return txErr
	})
	return doc, err
}

func (s *Store) GetAll(ctx context.Context, collection string) (docs []json.RawMessage, err error) {
	err = s.Transaction(ctx, []string{collection}, ReadOnly, func(tx *Tx) error {
		var txErr error
		docs, txErr = tx.GetAll(ctx, collection)
		return txErr
	})
	return docs, err
}

func (s *Store) GetByIndex(ctx context.Context, collection, index string, value any) (docs []json.RawMessage, err error) {
	err = s.Transaction(ctx, []string{collection}, ReadOnly, func(tx *Tx) error {
		var txErr error
		docs, txErr = tx.GetByIndex(ctx, collection, index, value)
		return txErr
	})
	return docs, err
}

func (s *Store) Delete(ctx context.Context, collection string, key Key) (deleted bool, err error) {
	err = s.Transaction(ctx, []string{collection}, ReadWrite, func(tx *Tx) error {
		var txErr error
		deleted, txErr = tx.Delete(ctx, collection, key)
		return txErr
	})
	return deleted, err
}

func (s *Store) Clear(ctx context.Context, collection string) error {
	return s.Transaction(ctx, []string{collection}, ReadWrite, func(tx *Tx) error {
		return tx.Clear(ctx, collection)
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
