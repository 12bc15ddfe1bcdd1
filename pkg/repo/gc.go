package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

// GCSummary reports the outcome of a garbage-collection pass.
type GCSummary struct {
	ReachableObjects int
	PrunedObjects    int
}

// GC deletes blobs that no stored commit tree and no staged addition
// references. Commits are never deleted, even when no branch reaches them.
func (r *Repo) GC() (*GCSummary, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}

	var roots []object.Hash
	var all []object.Hash
	err = r.Store.Walk(func(h object.Hash) error {
		typ, err := r.Store.ReadType(h)
		if err != nil {
			return err
		}
		if typ == object.TypeCommit {
			roots = append(roots, h)
		}
		all = append(all, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}
	for _, h := range stg.Added() {
		roots = append(roots, h)
	}

	keep, err := r.Store.ReachableSet(roots)
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}

	summary := &GCSummary{ReachableObjects: len(keep)}
	for _, h := range all {
		if _, ok := keep[h]; ok {
			continue
		}
		if err := r.Store.Delete(h); err != nil {
			return nil, fmt.Errorf("gc: %w", err)
		}
		summary.PrunedObjects++
	}

	r.log.Info("garbage collected",
		zap.String("op", "gc"),
		zap.Int("reachable", summary.ReachableObjects),
		zap.Int("pruned", summary.PrunedObjects),
	)
	return summary, nil
}
