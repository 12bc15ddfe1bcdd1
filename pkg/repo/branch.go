package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// CreateBranch creates branch name pointing at the current commit. HEAD is
// not moved.
func (r *Repo) CreateBranch(name string) error {
	if err := validateBranchName(name); err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	if r.branchExists(name) {
		return fmt.Errorf("branch %q: %w", name, ErrBranchExists)
	}
	_, h, err := r.HeadCommit()
	if err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	if err := r.UpdateRef(name, h, "branch: created"); err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	r.log.Info("branch created", zap.String("op", "branch"), zap.String("branch", name), zap.String("commit", string(h)))
	return nil
}

// DeleteBranch removes the ref of branch name. Commits made on it remain
// stored. The current branch cannot be deleted.
func (r *Repo) DeleteBranch(name string) error {
	if err := validateBranchName(name); err != nil {
		return fmt.Errorf("rm-branch: %w", err)
	}
	if !r.branchExists(name) {
		return fmt.Errorf("rm-branch %q: %w", name, ErrNoSuchBranch)
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("rm-branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("rm-branch %q: %w", name, ErrCannotRemoveCurrentBranch)
	}

	if err := os.Remove(r.branchRefPath(name)); err != nil {
		return fmt.Errorf("rm-branch %q: %w", name, err)
	}
	_ = os.Remove(filepath.Join(r.MetaDir, "logs", "refs", "heads", name))

	r.log.Info("branch removed", zap.String("op", "rm-branch"), zap.String("branch", name))
	return nil
}

// ListBranches returns the branch names sorted alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.MetaDir, "refs", "heads"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || validateBranchName(e.Name()) != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
