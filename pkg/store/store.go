// Package store is the persisted key-value store for small string flags
// such as darkMode and autoTheme, backed by BadgerDB.
package store

import (
	"errors"
	"fmt"
	"os"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"
)

const (
	KeyDarkMode  = "darkMode"
	KeyAutoTheme = "autoTheme"
)

// Flag values stored for boolean keys
const (
	True  = "true"
	False = "false"
)

var ErrClosed = errors.New("store is closed")

// KeyValueStore persists string values. An absent key is reported with
// ok=false, distinct from an empty value.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Options configure Open
type Options struct {
	Path     string
	InMemory bool
	Logger   *zap.Logger
}

// Store implements KeyValueStore on BadgerDB
type Store struct {
	db     *badgerdb.DB
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// Open opens the badger store described by opts
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var badgerOpts badgerdb.Options
	if opts.InMemory {
		badgerOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("store path is empty")
		}
		if err := os.MkdirAll(opts.Path, 0700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		badgerOpts = badgerdb.DefaultOptions(opts.Path)
	}

	// Flags are tiny; keep the footprint small
	badgerOpts = badgerOpts.
		WithLogger(badgerLogger{logger.Sugar()}).
		WithMemTableSize(8 << 20).
		WithValueLogFileSize(16 << 20).
		WithNumMemtables(1).
		WithBlockCacheSize(1 << 20).
		WithIndexCacheSize(1 << 20)

	db, err := badgerdb.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	logger.Debug("store opened", zap.String("path", opts.Path), zap.Bool("inMemory", opts.InMemory))
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(value), true, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error
func (s *Store) Delete(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// FormatBool renders b as a stored flag value
func FormatBool(b bool) string {
	if b {
		return True
	}
	return False
}

// badgerLogger routes badger's internal logging into zap
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }

func (l badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }

func (l badgerLogger) Infof(format string, args ...interface{}) { l.s.Debugf(format, args...) }

func (l badgerLogger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }
