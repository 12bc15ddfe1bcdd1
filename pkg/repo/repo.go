// Package repo implements a local version-control engine on top of the
// content-addressed object store: refs and HEAD, the staging area, commits,
// branch graph traversal, three-way merge and working tree synchronisation.
package repo

import (
	"errors"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

// MetaDirName is the metadata directory created at the repository root.
const MetaDirName = ".gitlet"

// Repo represents an opened gitlet repository. A Repo owns an open catalog
// handle and must be closed.
type Repo struct {
	RootDir string        // working directory root
	MetaDir string        // .gitlet/ directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	catalog *Catalog
	graph   *commitGraph
	log     *zap.Logger
	now     func() time.Time

	ownsLogger bool
}

// Option customises a Repo at Init or Open time.
type Option func(*Repo)

// WithLogger makes the repository log to l instead of building a logger from
// its [log] configuration.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) { r.log = l }
}

// WithClock replaces the wall clock used for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) { r.now = now }
}

func newRepo(root, metaDir string, opts []Option) *Repo {
	r := &Repo{
		RootDir: root,
		MetaDir: metaDir,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Logger returns the repository logger.
func (r *Repo) Logger() *zap.Logger {
	return r.log
}

// Close releases the catalog and flushes the logger.
func (r *Repo) Close() error {
	var errs []error
	if r.catalog != nil {
		if err := r.catalog.Close(); err != nil {
			errs = append(errs, err)
		}
		r.catalog = nil
	}
	if r.ownsLogger && r.log != nil {
		// Sync on stderr reports EINVAL on some platforms; ignore it.
		_ = r.log.Sync()
	}
	return errors.Join(errs...)
}
