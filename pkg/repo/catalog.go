package repo

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/odvcencio/gitlet/pkg/logging"
	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

const (
	commitKeyPrefix  = "commit/"
	messageKeyPrefix = "message/"
	blobKeyPrefix    = "blob/"
)

// CommitSummary is the catalog record kept for every stored commit.
type CommitSummary struct {
	Hash      object.Hash   `json:"hash"`
	Parents   []object.Hash `json:"parents,omitempty"`
	Author    string        `json:"author"`
	Timestamp int64         `json:"timestamp"`
	Branch    string        `json:"branch"`
	Message   string        `json:"message"`
}

// Catalog indexes commits by digest and message, and records which blobs
// committed trees reference. It is derived data: Reindex rebuilds it from
// the object store.
type Catalog struct {
	db *badger.DB
}

func openCatalog(dir string, log *zap.Logger) (*Catalog, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(logging.NewBadgerLogger(log)).
		WithNumVersionsToKeep(1).
		WithMemTableSize(8 << 20).
		WithValueThreshold(4 << 10).
		WithValueLogFileSize(16 << 20).
		WithBlockCacheSize(8 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the catalog's directory lock.
func (c *Catalog) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close catalog: %w", err)
	}
	return nil
}

// messagePrefix hex-encodes msg so that no message can extend into another
// message's key range.
func messagePrefix(msg string) []byte {
	return []byte(messageKeyPrefix + hex.EncodeToString([]byte(msg)) + "/")
}

func messageKey(msg string, h object.Hash) []byte {
	return append(messagePrefix(msg), string(h)...)
}

// Record indexes commit c stored under h. Recording a commit twice is
// harmless.
func (c *Catalog) Record(h object.Hash, commit *object.CommitObj) error {
	summary := CommitSummary{
		Hash:      h,
		Parents:   commit.Parents,
		Author:    commit.Author,
		Timestamp: commit.Timestamp,
		Branch:    commit.Branch,
		Message:   commit.Message,
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("catalog record: marshal: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(commitKeyPrefix+string(h)), data); err != nil {
			return err
		}
		if err := txn.Set(messageKey(commit.Message, h), nil); err != nil {
			return err
		}
		for _, blob := range commit.Tree {
			if err := txn.Set([]byte(blobKeyPrefix+string(blob)), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("catalog record %s: %w", h, err)
	}
	return nil
}

// Commits lists every cataloged commit in digest order.
func (c *Catalog) Commits() ([]CommitSummary, error) {
	var out []CommitSummary
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(commitKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var s CommitSummary
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &s)
			})
			if err != nil {
				return fmt.Errorf("%w: %s: %w", errCorruptMetadata, it.Item().Key(), err)
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog commits: %w", err)
	}
	return out, nil
}

// FindByMessage returns the digests of commits whose message equals msg
// exactly, in digest order.
func (c *Catalog) FindByMessage(msg string) ([]object.Hash, error) {
	prefix := messagePrefix(msg)
	var out []object.Hash
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			out = append(out, object.Hash(bytes.TrimPrefix(key, prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog find: %w", err)
	}
	return out, nil
}

// MatchPrefix returns the digests of cataloged commits starting with prefix.
func (c *Catalog) MatchPrefix(prefix string) ([]object.Hash, error) {
	keyPrefix := []byte(commitKeyPrefix + prefix)
	var out []object.Hash
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			key := it.Item().Key()
			out = append(out, object.Hash(bytes.TrimPrefix(key, []byte(commitKeyPrefix))))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog match: %w", err)
	}
	return out, nil
}

// HasBlob reports whether any cataloged commit tree references blob h.
func (c *Catalog) HasBlob(h object.Hash) (bool, error) {
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(blobKeyPrefix + string(h)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("catalog blob %s: %w", h, err)
	}
	return found, nil
}

// Empty reports whether no commit has been cataloged.
func (c *Catalog) Empty() (bool, error) {
	empty := true
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(commitKeyPrefix)
		it.Seek(prefix)
		empty = !it.ValidForPrefix(prefix)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("catalog: %w", err)
	}
	return empty, nil
}

func (c *Catalog) dropAll() error {
	if err := c.db.DropAll(); err != nil {
		return fmt.Errorf("catalog drop: %w", err)
	}
	return nil
}

// Reindex rebuilds the catalog from every commit in the object store and
// returns the number of commits indexed.
func (r *Repo) Reindex() (int, error) {
	if err := r.catalog.dropAll(); err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}

	n := 0
	err := r.Store.Walk(func(h object.Hash) error {
		typ, err := r.Store.ReadType(h)
		if err != nil {
			return err
		}
		if typ != object.TypeCommit {
			return nil
		}
		c, err := r.Store.ReadCommit(h)
		if err != nil {
			return err
		}
		if err := r.catalog.Record(h, c); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("reindex: %w", err)
	}

	r.log.Info("catalog rebuilt", zap.String("op", "reindex"), zap.Int("commits", n))
	return n, nil
}
