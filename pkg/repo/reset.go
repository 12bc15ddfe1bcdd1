package repo

import (
	"fmt"

	"go.uber.org/zap"
)

// Reset moves the current branch to the commit identified by commitID (full
// or abbreviated), makes the working tree match that commit and clears the
// staging area.
func (r *Repo) Reset(commitID string) error {
	target, err := r.ResolveCommit(commitID)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	branch, old, cur, err := r.headCommitObj()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	tc, err := r.graph.Commit(target)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if err := r.applyTree(cur.Tree, stg, tc.Tree); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := r.advanceHead(branch, target, "reset: moving to "+target.Short(7)); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := r.clearStaging(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	r.log.Info("branch reset",
		zap.String("op", "reset"),
		zap.String("branch", branch),
		zap.String("old", string(old)),
		zap.String("commit", string(target)),
	)
	return nil
}
