package storage

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/eleven-am/cadence/internal/domain"
)

const stateKeyPrefix = "execution:state:"

// BadgerStore persists execution snapshots in an embedded badger database so
// runs survive a process restart and stay inspectable afterwards.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

func NewBadgerStore(dataDir string, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "badger-store")

	opts := badger.DefaultOptions(dataDir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &domain.StoreError{Op: "open", Err: err}
	}

	logger.Debug("badger store opened", "data_dir", dataDir)

	return &BadgerStore{db: db, logger: logger}, nil
}

func stateKey(executionID string) []byte {
	return []byte(stateKeyPrefix + executionID)
}

func (s *BadgerStore) Save(ctx context.Context, state *domain.WorkflowState) error {
	if err := ctx.Err(); err != nil {
		return &domain.StoreError{Op: "save", Err: err}
	}

	data, err := encodeSnapshot(state)
	if err != nil {
		return &domain.StoreError{Op: "save", Err: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey(state.ExecutionID), data)
	})
	if err != nil {
		return &domain.StoreError{Op: "save", Err: err}
	}

	s.logger.Debug("snapshot saved",
		"execution_id", state.ExecutionID,
		"status", state.Status,
		"bytes", len(data))

	return nil
}

func (s *BadgerStore) Load(ctx context.Context, executionID string) (*domain.WorkflowState, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "load", Err: err}
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey(executionID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrExecutionNotFound
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "load", Err: err}
	}

	state, err := decodeSnapshot(data)
	if err != nil {
		return nil, &domain.StoreError{Op: "load", Err: err}
	}

	return state, nil
}

func (s *BadgerStore) List(ctx context.Context, workflowID string) ([]*domain.WorkflowState, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}

	var states []*domain.WorkflowState
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(stateKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if !strings.HasPrefix(key, stateKeyPrefix) {
				continue
			}

			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			state, err := decodeSnapshot(data)
			if err != nil {
				s.logger.Warn("skipping undecodable snapshot", "key", key, "error", err)
				continue
			}

			if state.WorkflowID == workflowID {
				states = append(states, state)
			}
		}

		return nil
	})
	if err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].StartedAt.After(states[j].StartedAt)
	})

	return states, nil
}

func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return &domain.StoreError{Op: "close", Err: err}
	}
	return nil
}
