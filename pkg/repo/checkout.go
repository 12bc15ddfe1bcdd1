package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

// CheckoutBranch switches to branch name: the working tree is replaced by
// the branch tip's tree, the staging area is cleared and HEAD moves.
func (r *Repo) CheckoutBranch(name string) error {
	target, err := r.ResolveBranch(name)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	current, _, cur, err := r.headCommitObj()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if current == name {
		return fmt.Errorf("checkout: %w", ErrAlreadyOnBranch)
	}

	tc, err := r.graph.Commit(target)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	if err := r.applyTree(cur.Tree, stg, tc.Tree); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.clearStaging(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.writeHead(name, target); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	r.log.Info("switched branch",
		zap.String("op", "checkout"),
		zap.String("from", current),
		zap.String("branch", name),
		zap.String("commit", string(target)),
	)
	return nil
}

// CheckoutFile overwrites the working copy of path with its version in the
// commit identified by commitID (full or abbreviated), or in the current
// commit when commitID is empty. The staging area is not changed.
func (r *Repo) CheckoutFile(path, commitID string) error {
	rel, err := r.repoRelPath(path)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	var h object.Hash
	if commitID == "" {
		_, h, err = r.HeadCommit()
	} else {
		h, err = r.ResolveCommit(commitID)
	}
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	c, err := r.graph.Commit(h)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	blob, ok := c.Tree.Lookup(rel)
	if !ok {
		return fmt.Errorf("checkout %q: %w", rel, ErrFileNotInCommit)
	}
	if err := r.writeWorkingFile(rel, blob); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}

	r.log.Debug("restored file",
		zap.String("op", "checkout"),
		zap.String("path", rel),
		zap.String("commit", string(h)),
	)
	return nil
}
