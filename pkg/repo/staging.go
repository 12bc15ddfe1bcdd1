package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

// EntryStatus is the pending change a staging entry records.
type EntryStatus string

const (
	StatusAdded   EntryStatus = "added"
	StatusRemoved EntryStatus = "removed"
)

// StagingEntry records the staged state of a single path. BlobHash is set
// only for StatusAdded.
type StagingEntry struct {
	Path     string      `json:"path"`
	Status   EntryStatus `json:"status"`
	BlobHash object.Hash `json:"blob_hash,omitempty"`
}

// Staging holds the full staging area (index).
type Staging struct {
	Entries map[string]*StagingEntry `json:"entries"`
}

func newStaging() *Staging {
	return &Staging{Entries: make(map[string]*StagingEntry)}
}

// IsEmpty reports whether nothing is staged.
func (s *Staging) IsEmpty() bool {
	return len(s.Entries) == 0
}

// Added returns the staged additions as a path to blob mapping.
func (s *Staging) Added() object.Tree {
	out := object.Tree{}
	for p, e := range s.Entries {
		if e.Status == StatusAdded {
			out[p] = e.BlobHash
		}
	}
	return out
}

// Removed returns the paths staged for removal, sorted.
func (s *Staging) Removed() []string {
	var out []string
	for p, e := range s.Entries {
		if e.Status == StatusRemoved {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// references reports whether a staged addition points at blob h.
func (s *Staging) references(h object.Hash) bool {
	for _, e := range s.Entries {
		if e.Status == StatusAdded && e.BlobHash == h {
			return true
		}
	}
	return false
}

// apply overlays the staging area onto base and returns the resulting tree.
func (s *Staging) apply(base object.Tree) object.Tree {
	tree := base.Clone()
	for p, e := range s.Entries {
		switch e.Status {
		case StatusAdded:
			tree[p] = e.BlobHash
		case StatusRemoved:
			delete(tree, p)
		}
	}
	return tree
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.MetaDir, "index")
}

// ReadStaging loads the staging area from .gitlet/index. A missing file
// yields an empty Staging.
func (r *Repo) ReadStaging() (*Staging, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newStaging(), nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}

	var stg Staging
	if err := json.Unmarshal(data, &stg); err != nil {
		return nil, fmt.Errorf("read staging: %w: %w", errCorruptMetadata, err)
	}
	if stg.Entries == nil {
		stg.Entries = make(map[string]*StagingEntry)
	}
	for p, e := range stg.Entries {
		if e == nil || (e.Status != StatusAdded && e.Status != StatusRemoved) {
			return nil, fmt.Errorf("read staging: %w: bad entry for %q", errCorruptMetadata, p)
		}
	}
	return &stg, nil
}

// WriteStaging atomically writes the staging area to .gitlet/index.
func (r *Repo) WriteStaging(s *Staging) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}
	if err := writeFileAtomic(r.indexPath(), data); err != nil {
		return fmt.Errorf("write staging: %w", err)
	}
	return nil
}

func (r *Repo) clearStaging() error {
	return r.WriteStaging(newStaging())
}

// Add stages the given working files. Every path must exist before anything
// is staged. A file whose content matches the current commit is unstaged
// instead; a pending removal of the path is cleared either way.
func (r *Repo) Add(paths []string) error {
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		info, err := os.Stat(r.absPath(rel))
		if err != nil || !info.Mode().IsRegular() {
			return fmt.Errorf("add %q: %w", rel, ErrFileNotFound)
		}
		rels = append(rels, rel)
	}

	_, _, head, err := r.headCommitObj()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	var prune []object.Hash
	for _, rel := range rels {
		content, err := os.ReadFile(r.absPath(rel))
		if err != nil {
			return fmt.Errorf("add: read %q: %w", rel, err)
		}
		working := object.HashBlobData(content)

		var prevBlob object.Hash
		if prev := stg.Entries[rel]; prev != nil && prev.Status == StatusAdded {
			prevBlob = prev.BlobHash
		}

		if committed, ok := head.Tree.Lookup(rel); ok && committed == working {
			delete(stg.Entries, rel)
			if prevBlob != "" {
				prune = append(prune, prevBlob)
			}
			r.log.Debug("unstaged unchanged file", zap.String("op", "add"), zap.String("path", rel))
			continue
		}

		if _, err := r.Store.WriteBlob(&object.Blob{Data: content}); err != nil {
			return fmt.Errorf("add: write blob %q: %w", rel, err)
		}
		stg.Entries[rel] = &StagingEntry{Path: rel, Status: StatusAdded, BlobHash: working}
		if prevBlob != "" && prevBlob != working {
			prune = append(prune, prevBlob)
		}
		r.log.Debug("staged file", zap.String("op", "add"), zap.String("path", rel), zap.String("blob", string(working)))
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return r.pruneBlobs(stg, prune)
}

// Remove unstages path if it is staged, and if the current commit tracks it,
// stages its removal and deletes the working file.
func (r *Repo) Remove(path string) error {
	rel, err := r.repoRelPath(path)
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	_, _, head, err := r.headCommitObj()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	entry := stg.Entries[rel]
	staged := entry != nil && entry.Status == StatusAdded
	_, tracked := head.Tree.Lookup(rel)
	if !staged && !tracked {
		return fmt.Errorf("rm %q: %w", rel, ErrNothingToRemove)
	}

	var prune []object.Hash
	if staged {
		delete(stg.Entries, rel)
		prune = append(prune, entry.BlobHash)
	}
	if tracked {
		stg.Entries[rel] = &StagingEntry{Path: rel, Status: StatusRemoved}
		abs := r.absPath(rel)
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("rm: delete %q: %w", rel, err)
		}
		r.removeEmptyParents(filepath.Dir(abs))
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	r.log.Debug("removed file", zap.String("op", "rm"), zap.String("path", rel), zap.Bool("tracked", tracked))
	return r.pruneBlobs(stg, prune)
}

// pruneBlobs deletes candidate blobs that neither the staging area nor any
// committed tree references.
func (r *Repo) pruneBlobs(stg *Staging, candidates []object.Hash) error {
	for _, h := range candidates {
		if stg.references(h) {
			continue
		}
		committed, err := r.catalog.HasBlob(h)
		if err != nil {
			return fmt.Errorf("prune: %w", err)
		}
		if committed {
			continue
		}
		if err := r.Store.Delete(h); err != nil && !errors.Is(err, object.ErrNotFound) {
			return fmt.Errorf("prune %s: %w", h, err)
		}
		r.log.Debug("pruned orphaned blob", zap.String("blob", string(h)))
	}
	return nil
}

// repoRelPath converts a path (absolute, or relative to the working
// directory) into a slash-separated path relative to the repository root.
// A relative path that resolves outside the repository is taken as already
// repository-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path: %w", ErrFileNotFound)
	}

	var rel string
	if filepath.IsAbs(p) {
		var err error
		rel, err = filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
	} else {
		rel = filepath.Clean(p)
		if cwd, err := os.Getwd(); err == nil {
			if fromCwd, err := filepath.Rel(r.RootDir, filepath.Join(cwd, p)); err == nil && !escapes(fromCwd) {
				rel = fromCwd
			}
		}
	}

	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || escapes(rel) {
		return "", fmt.Errorf("%q is outside the repository: %w", p, ErrFileNotFound)
	}
	if rel == MetaDirName || strings.HasPrefix(rel, MetaDirName+"/") {
		return "", fmt.Errorf("%q is repository metadata: %w", p, ErrFileNotFound)
	}
	return rel, nil
}

func escapes(rel string) bool {
	rel = filepath.ToSlash(rel)
	return rel == ".." || strings.HasPrefix(rel, "../")
}
