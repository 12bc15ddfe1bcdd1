package repo

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
)

// workingFiles lists every regular file under the repository root, outside
// .gitlet/, as sorted slash-separated relative paths.
func (r *Repo) workingFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(r.RootDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != r.RootDir && d.Name() == MetaDirName && filepath.Dir(p) == r.RootDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk working tree: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// workingDigest hashes the working copy of rel as a blob. ok is false when
// the file does not exist.
func (r *Repo) workingDigest(rel string) (h object.Hash, ok bool, err error) {
	data, err := os.ReadFile(r.absPath(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return object.HashBlobData(data), true, nil
}

// untrackedObstructions returns the untracked working files (neither in cur
// nor staged for addition) that applying target would clobber: files target
// overwrites with different content, files standing where target needs a
// directory, and files inside a directory target replaces with a file.
func (r *Repo) untrackedObstructions(cur object.Tree, stg *Staging, target object.Tree) ([]string, error) {
	files, err := r.workingFiles()
	if err != nil {
		return nil, err
	}
	added := stg.Added()
	dirs := treeDirs(target)

	var blocked []string
	for _, f := range files {
		if _, ok := cur[f]; ok {
			continue
		}
		if _, ok := added[f]; ok {
			continue
		}
		if want, ok := target[f]; ok {
			got, exists, err := r.workingDigest(f)
			if err != nil {
				return nil, err
			}
			if exists && got != want {
				blocked = append(blocked, f)
			}
			continue
		}
		if _, ok := dirs[f]; ok {
			blocked = append(blocked, f)
			continue
		}
		if fileAncestor(target, f) != "" {
			blocked = append(blocked, f)
		}
	}
	return blocked, nil
}

// treeDirs returns every directory implied by the paths of t.
func treeDirs(t object.Tree) map[string]struct{} {
	dirs := make(map[string]struct{})
	for p := range t {
		for d := path.Dir(p); d != "."; d = path.Dir(d) {
			if _, ok := dirs[d]; ok {
				break
			}
			dirs[d] = struct{}{}
		}
	}
	return dirs
}

// fileAncestor returns the nearest parent directory of rel that t holds as
// a file, or "".
func fileAncestor(t object.Tree, rel string) string {
	for d := path.Dir(rel); d != "."; d = path.Dir(d) {
		if _, ok := t[d]; ok {
			return d
		}
	}
	return ""
}

// applyTree makes the working directory match target. All untracked
// obstructions are detected before anything is touched. Tracked files
// (committed in cur or staged for addition) absent from target are deleted.
func (r *Repo) applyTree(cur object.Tree, stg *Staging, target object.Tree) error {
	blocked, err := r.untrackedObstructions(cur, stg, target)
	if err != nil {
		return err
	}
	if len(blocked) > 0 {
		return &UntrackedObstructionError{Paths: blocked}
	}

	tracked := cur.Clone()
	for p, h := range stg.Added() {
		tracked[p] = h
	}
	for _, p := range tracked.Paths() {
		if _, keep := target[p]; keep {
			continue
		}
		abs := r.absPath(p)
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
		r.removeEmptyParents(filepath.Dir(abs))
	}

	for _, p := range target.Paths() {
		// Only empty directories can remain here: tracked files were
		// removed above and untracked ones block.
		if info, err := os.Stat(r.absPath(p)); err == nil && info.IsDir() {
			if err := removeEmptyTree(r.absPath(p)); err != nil {
				return fmt.Errorf("replace directory %s: %w", p, err)
			}
		}
		if err := r.writeWorkingFile(p, target[p]); err != nil {
			return err
		}
	}
	return nil
}

// writeWorkingFile writes blob h to rel unless the file already holds it.
func (r *Repo) writeWorkingFile(rel string, h object.Hash) error {
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return fmt.Errorf("read blob for %s: %w", rel, err)
	}
	return r.writeWorkingBytes(rel, blob.Data)
}

func (r *Repo) writeWorkingBytes(rel string, data []byte) error {
	abs := r.absPath(rel)
	if existing, err := os.ReadFile(abs); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", rel, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
