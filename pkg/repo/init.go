package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/odvcencio/gitlet/pkg/logging"
	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

// DefaultBranch is the branch created by Init.
const DefaultBranch = "master"

// RootCommit returns the commit every repository starts from. Its fields are
// fixed, so its digest is identical across repositories.
func RootCommit() *object.CommitObj {
	return &object.CommitObj{
		Author:    "gitlet",
		Timestamp: 0,
		Branch:    DefaultBranch,
		Tree:      object.Tree{},
		Message:   "initial commit",
	}
}

// Init creates a new repository at path: the .gitlet/ directory structure,
// config.toml, the root commit, refs/heads/master and HEAD. Returns
// ErrAlreadyInitialized if .gitlet/ exists.
func Init(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	metaDir := filepath.Join(abs, MetaDirName)

	if _, err := os.Stat(metaDir); err == nil {
		return nil, fmt.Errorf("init: %w", ErrAlreadyInitialized)
	}

	dirs := []string{
		filepath.Join(metaDir, "objects"),
		filepath.Join(metaDir, "refs", "heads"),
		filepath.Join(metaDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	cfg := DefaultConfig()
	cfg.Core.ID = uuid.NewString()
	if err := WriteConfig(metaDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r := newRepo(abs, metaDir, opts)
	if err := r.setup(cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	root := RootCommit()
	rootHash, err := r.Store.WriteCommit(root)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("init: write root commit: %w", err)
	}
	if err := r.catalog.Record(rootHash, root); err != nil {
		r.Close()
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.UpdateRef(DefaultBranch, rootHash, "init"); err != nil {
		r.Close()
		return nil, fmt.Errorf("init: %w", err)
	}
	if err := r.writeHead(DefaultBranch, rootHash); err != nil {
		r.Close()
		return nil, fmt.Errorf("init: %w", err)
	}

	r.log.Info("initialized repository", zap.String("op", "init"), zap.String("root", abs))
	return r, nil
}

// Open searches upward from path for a .gitlet/ directory and opens the
// repository. Returns ErrNotInitialized if no .gitlet/ directory is found.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		metaDir := filepath.Join(cur, MetaDirName)
		info, err := os.Stat(metaDir)
		if err == nil && info.IsDir() {
			cfg, err := ReadConfig(metaDir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			r := newRepo(cur, metaDir, opts)
			if err := r.setup(cfg); err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %w", ErrNotInitialized)
		}
		cur = parent
	}
}

// setup wires the store, logger, catalog and commit graph from cfg.
func (r *Repo) setup(cfg *Config) error {
	r.Config = cfg
	r.Store = object.NewStore(r.MetaDir, object.WithCompression(cfg.Core.Compress))

	if r.log == nil {
		l, err := logging.New(cfg.LoggingOptions(r.MetaDir))
		if err != nil {
			return err
		}
		r.log = l
		r.ownsLogger = true
	}
	if cfg.Core.ID != "" {
		r.log = r.log.With(zap.String("repo", cfg.Core.ID))
	}

	cat, err := openCatalog(filepath.Join(r.MetaDir, "catalog"), r.log)
	if err != nil {
		return err
	}
	r.catalog = cat

	graph, err := newCommitGraph(r.Store, cfg.Core.CommitCacheSize)
	if err != nil {
		r.Close()
		return err
	}
	r.graph = graph

	empty, err := cat.Empty()
	if err != nil {
		r.Close()
		return err
	}
	if empty {
		if _, err := os.Stat(filepath.Join(r.MetaDir, "HEAD")); err == nil {
			// Catalog missing or wiped on an existing repository.
			if _, err := r.Reindex(); err != nil {
				r.Close()
				return err
			}
		}
	}
	return nil
}
