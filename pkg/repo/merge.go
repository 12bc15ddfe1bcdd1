package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

// MergeStatus is the action a merge took for one path.
type MergeStatus string

const (
	MergeTaken    MergeStatus = "taken"    // given side's content checked out and staged
	MergeDeleted  MergeStatus = "deleted"  // removed and staged for removal
	MergeConflict MergeStatus = "conflict" // conflict markers written and staged
)

// FileMergeReport records the merge outcome for a single path. Paths the
// merge leaves as they are on the current branch are not reported.
type FileMergeReport struct {
	Path   string
	Status MergeStatus
	Blob   object.Hash // resulting content; empty for MergeDeleted
	Ours   object.Hash // current side, set for conflicts
	Theirs object.Hash // given side, set for conflicts
}

// MergeReport is the overall result of a repository-level merge.
type MergeReport struct {
	Current        string
	Given          string
	Base           object.Hash // split point
	Files          []FileMergeReport
	HasConflicts   bool
	TotalConflicts int
	MergeCommit    object.Hash
}

// Merge merges branch given into the current branch.
//
// Preconditions are all checked before anything changes: given must exist
// and differ from the current branch, nothing may be staged, and no untracked
// file may be in the way of the given tree. When one tip contains the other
// no commit is made; the behind ref is advanced and a *FastForwardError is
// returned. Otherwise every path is resolved against the split point and a
// two-parent commit is always created, conflicts included. Conflicts are
// reported through MergeReport.HasConflicts, not as an error.
func (r *Repo) Merge(given string) (*MergeReport, error) {
	givenHash, err := r.ResolveBranch(given)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	current, head, cur, err := r.headCommitObj()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if current == given {
		return nil, fmt.Errorf("merge: %w", ErrSelfMerge)
	}

	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if !stg.IsEmpty() {
		return nil, fmt.Errorf("merge: %w", ErrUncommittedChanges)
	}

	gc, err := r.graph.Commit(givenHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	blocked, err := r.untrackedObstructions(cur.Tree, stg, gc.Tree)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if len(blocked) > 0 {
		return nil, fmt.Errorf("merge: %w", &UntrackedObstructionError{Paths: blocked})
	}

	split, err := r.graph.SplitPoint(head, givenHash)
	if err != nil {
		var ff *FastForwardError
		if errors.As(err, &ff) {
			if ffErr := r.fastForward(current, given, ff, cur, stg, gc); ffErr != nil {
				return nil, fmt.Errorf("merge: %w", ffErr)
			}
		}
		return nil, fmt.Errorf("merge: %w", err)
	}
	sc, err := r.graph.Commit(split)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	report := &MergeReport{
		Current: current,
		Given:   given,
		Base:    split,
		Files:   mergeTrees(sc.Tree, cur.Tree, gc.Tree),
	}

	staged := newStaging()
	// Deletions first, so a directory can give way to a file of the same name.
	order := make([]int, 0, len(report.Files))
	for i, f := range report.Files {
		if f.Status == MergeDeleted {
			order = append(order, i)
		}
	}
	for i, f := range report.Files {
		if f.Status != MergeDeleted {
			order = append(order, i)
		}
	}
	for _, i := range order {
		f := &report.Files[i]
		switch f.Status {
		case MergeTaken:
			if err := r.writeWorkingFile(f.Path, f.Blob); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			staged.Entries[f.Path] = &StagingEntry{Path: f.Path, Status: StatusAdded, BlobHash: f.Blob}

		case MergeDeleted:
			abs := r.absPath(f.Path)
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("merge: remove %s: %w", f.Path, err)
			}
			r.removeEmptyParents(filepath.Dir(abs))
			staged.Entries[f.Path] = &StagingEntry{Path: f.Path, Status: StatusRemoved}

		case MergeConflict:
			ours, err := r.readBlobData(f.Ours)
			if err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			theirs, err := r.readBlobData(f.Theirs)
			if err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			content := renderFileConflict(ours, theirs)
			h, err := r.Store.WriteBlob(&object.Blob{Data: content})
			if err != nil {
				return nil, fmt.Errorf("merge: write conflict blob: %w", err)
			}
			if err := r.writeWorkingBytes(f.Path, content); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			f.Blob = h
			staged.Entries[f.Path] = &StagingEntry{Path: f.Path, Status: StatusAdded, BlobHash: h}
			report.HasConflicts = true
			report.TotalConflicts++
		}
	}

	if err := r.WriteStaging(staged); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	msg := fmt.Sprintf("Merged %s into %s.", given, current)
	mergeHash, err := r.commitStaged(msg, staged, givenHash)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	report.MergeCommit = mergeHash

	r.log.Info("merge completed",
		zap.String("op", "merge"),
		zap.String("branch", current),
		zap.String("given", given),
		zap.String("base", string(split)),
		zap.String("commit", string(mergeHash)),
		zap.Int("conflicts", report.TotalConflicts),
	)
	return report, nil
}

// fastForward advances whichever ref is behind. When the current branch is
// behind, the working tree follows it.
func (r *Repo) fastForward(current, given string, ff *FastForwardError, cur *object.CommitObj, stg *Staging, gc *object.CommitObj) error {
	switch ff.Direction {
	case CurrentBehind:
		if err := r.applyTree(cur.Tree, stg, gc.Tree); err != nil {
			return err
		}
		if err := r.advanceHead(current, ff.To, "merge "+given+": fast-forward"); err != nil {
			return err
		}
		r.log.Info("current branch fast-forwarded",
			zap.String("op", "merge"),
			zap.String("branch", current),
			zap.String("commit", string(ff.To)),
		)
	case GivenBehind:
		if err := r.UpdateRef(given, ff.To, "merge: fast-forward to "+current); err != nil {
			return err
		}
		r.log.Info("given branch fast-forwarded",
			zap.String("op", "merge"),
			zap.String("branch", given),
			zap.String("commit", string(ff.To)),
		)
	}
	return nil
}

// mergeTrees classifies every path of base ∪ ours ∪ theirs. A missing path
// compares as its own distinct value, so deletions follow the same rules as
// modifications:
//
//	ours == theirs            keep ours
//	ours == base              take theirs (delete when theirs is missing)
//	theirs == base            keep ours
//	otherwise                 conflict
//
// Only paths that change relative to ours are returned, sorted by path.
func mergeTrees(base, ours, theirs object.Tree) []FileMergeReport {
	var out []FileMergeReport
	for _, p := range collectAllPaths(base, ours, theirs) {
		b := base[p]
		o := ours[p]
		t := theirs[p]

		switch {
		case o == t:
		case o == b:
			if t == "" {
				out = append(out, FileMergeReport{Path: p, Status: MergeDeleted})
			} else {
				out = append(out, FileMergeReport{Path: p, Status: MergeTaken, Blob: t})
			}
		case t == b:
		default:
			out = append(out, FileMergeReport{Path: p, Status: MergeConflict, Ours: o, Theirs: t})
		}
	}
	return out
}

// renderFileConflict wraps both versions in conflict markers. A missing
// side renders as empty; a non-empty side gains a trailing newline if it
// lacks one.
func renderFileConflict(ours, theirs []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< HEAD\n")
	buf.Write(ours)
	if len(ours) > 0 && ours[len(ours)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("=======\n")
	buf.Write(theirs)
	if len(theirs) > 0 && theirs[len(theirs)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(">>>>>>>\n")
	return buf.Bytes()
}

// readBlobData reads a blob's raw data; the empty hash reads as no content.
func (r *Repo) readBlobData(h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", h, err)
	}
	return blob.Data, nil
}

// collectAllPaths returns a sorted, deduplicated list of all paths across
// three trees.
func collectAllPaths(base, ours, theirs object.Tree) []string {
	seen := make(map[string]bool)
	for _, t := range []object.Tree{base, ours, theirs} {
		for p := range t {
			seen[p] = true
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
