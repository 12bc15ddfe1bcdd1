package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

// LogEntry pairs a commit with its digest.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Commit records the staging area as a new commit on the current branch and
// returns its digest. An empty staging area fails with ErrNothingToCommit and
// a blank message with ErrEmptyMessage.
func (r *Repo) Commit(message string) (object.Hash, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if stg.IsEmpty() {
		return "", fmt.Errorf("commit: %w", ErrNothingToCommit)
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("commit: %w", ErrEmptyMessage)
	}

	h, err := r.commitStaged(message, stg, "")
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return h, nil
}

// commitStaged builds a commit from the current tree plus stg, with second
// as the merged-in parent when non-empty. The staging area may be empty.
func (r *Repo) commitStaged(message string, stg *Staging, second object.Hash) (object.Hash, error) {
	branch, head, cur, err := r.headCommitObj()
	if err != nil {
		return "", err
	}

	parents := []object.Hash{head}
	if second != "" {
		parents = append(parents, second)
	}
	c := &object.CommitObj{
		Parents:   parents,
		Author:    r.Config.Author(),
		Timestamp: r.now().Unix(),
		Branch:    branch,
		Tree:      stg.apply(cur.Tree),
		Message:   message,
	}

	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return "", fmt.Errorf("write commit: %w", err)
	}
	if err := r.catalog.Record(h, c); err != nil {
		return "", err
	}
	if err := r.advanceHead(branch, h, "commit: "+message); err != nil {
		return "", err
	}
	if err := r.clearStaging(); err != nil {
		return "", err
	}

	r.log.Info("commit created",
		zap.String("op", "commit"),
		zap.String("branch", branch),
		zap.String("commit", string(h)),
		zap.Int("files", len(c.Tree)),
		zap.Bool("merge", c.IsMerge()),
	)
	return h, nil
}

// Log walks first parents from the current commit back to the root commit.
func (r *Repo) Log() ([]LogEntry, error) {
	_, h, err := r.HeadCommit()
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	var entries []LogEntry
	for h != "" {
		c, err := r.graph.Commit(h)
		if err != nil {
			return nil, fmt.Errorf("log: %w", err)
		}
		entries = append(entries, LogEntry{Hash: h, Commit: c})
		h = c.Parent1()
	}
	return entries, nil
}

// GlobalLog lists every commit ever made, in digest order.
func (r *Repo) GlobalLog() ([]CommitSummary, error) {
	commits, err := r.catalog.Commits()
	if err != nil {
		return nil, fmt.Errorf("global-log: %w", err)
	}
	return commits, nil
}

// Find returns the digests of all commits whose message is exactly message.
func (r *Repo) Find(message string) ([]object.Hash, error) {
	hashes, err := r.catalog.FindByMessage(message)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	if len(hashes) == 0 {
		return nil, fmt.Errorf("find: %w", ErrNoMatchingCommit)
	}
	return hashes, nil
}
