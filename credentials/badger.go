package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// keyPrefix namespaces credential records inside the database.
var keyPrefix = []byte("cred/")

// BadgerConfig configures [OpenBadgerStore].
type BadgerConfig struct {
	// Path is the database directory.  Required unless InMemory is set.
	Path string
	// InMemory keeps the database in memory only; nothing touches disk.
	InMemory bool
	// SyncWrites fsyncs every write before it returns.
	SyncWrites bool
	// Logger receives store lifecycle events.  Nil selects logrus' standard
	// logger.
	Logger logrus.FieldLogger
}

// BadgerStore is a [Store] backed by an embedded Badger database.  Records
// are stored as JSON under "cred/<username>".
type BadgerStore struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// OpenBadgerStore opens (creating if needed) the database described by cfg.
// Close it when done.
func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Path == "" && !cfg.InMemory {
		return nil, errors.New("credentials: badger store needs a path or InMemory")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("credentials: open badger store: %w", err)
	}
	cfg.Logger.WithFields(logrus.Fields{
		"path":      cfg.Path,
		"in_memory": cfg.InMemory,
	}).Info("credentials: badger store opened")

	return &BadgerStore{db: db, log: cfg.Logger}, nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func recordKey(username string) []byte {
	return append(append([]byte{}, keyPrefix...), username...)
}

// Create stores a new record.  Returns [ErrExists] when the username is taken.
func (s *BadgerStore) Create(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Username == "" {
		return ErrEmptyUsername
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("credentials: encode record: %w", err)
	}
	key := recordKey(rec.Username)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return ErrExists
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, data)
	})
}

// Find retrieves a record by username.  Returns [ErrNotFound] when absent.
func (s *BadgerStore) Find(ctx context.Context, username string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update replaces an existing record.  Returns [ErrNotFound] when absent.
func (s *BadgerStore) Update(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("credentials: encode record: %w", err)
	}
	key := recordKey(rec.Username)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete removes the record for username.  Returns [ErrNotFound] when absent.
func (s *BadgerStore) Delete(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := recordKey(username)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// Usernames lists every stored username in ascending order.
func (s *BadgerStore) Usernames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			out = append(out, string(it.Item().Key()[len(keyPrefix):]))
		}
		return nil
	})
	return out, err
}
