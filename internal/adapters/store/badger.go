package store

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

// BadgerRepository stores each task as a JSON value under task:<id> in an
// embedded Badger database. Values carry a TTL like the Redis backend.
type BadgerRepository struct {
	db  *badger.DB
	ttl time.Duration
}

// Opens a Badger database at path. An empty path opens an in-memory database.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cannot open badger at %q: %w", path, err)
	}
	return db, nil
}

// Creates a repository that owns db. A zero ttl disables value expiry.
func NewBadgerRepository(db *badger.DB, ttl time.Duration) *BadgerRepository {
	return &BadgerRepository{db: db, ttl: ttl}
}

func (r *BadgerRepository) Save(_ context.Context, task *domain.Task) error {
	data, err := encode(task)
	if err != nil {
		return fmt.Errorf("cannot encode task: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(taskKey(task.ID)), data)
		if r.ttl > 0 {
			entry = entry.WithTTL(r.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return errors.Storage("store.save", err)
	}
	return nil
}

func (r *BadgerRepository) Find(_ context.Context, id string) (*domain.Task, error) {
	var task *domain.Task

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(taskKey(id)))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			t, err := decode(val)
			task = t
			return err
		})
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.NotFound(errors.CodeTaskNotFound, "store.find", fmt.Errorf("task %q", id))
	}
	if err != nil {
		return nil, errors.Storage("store.find", err)
	}
	return task, nil
}

func (r *BadgerRepository) Delete(_ context.Context, id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(taskKey(id)))
	})
	if err != nil {
		return errors.Storage("store.delete", err)
	}
	return nil
}

func (r *BadgerRepository) Stale(ctx context.Context, before time.Time) ([]string, error) {
	var ids []string

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(taskKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			err := it.Item().Value(func(val []byte) error {
				task, err := decode(val)
				if err != nil {
					return err
				}
				if task.UpdatedAt.Before(before) {
					ids = append(ids, task.ID)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Storage("store.stale", err)
	}
	return ids, nil
}

func (r *BadgerRepository) Close() error {
	return r.db.Close()
}
