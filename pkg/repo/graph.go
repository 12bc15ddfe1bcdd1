package repo

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/odvcencio/gitlet/pkg/object"
)

// commitGraph reads commits through an LRU cache and answers ancestry
// queries. Cached commits are shared and must not be mutated.
type commitGraph struct {
	store *object.Store
	cache *lru.Cache[object.Hash, *object.CommitObj]
}

func newCommitGraph(store *object.Store, size int) (*commitGraph, error) {
	if size <= 0 {
		size = defaultCommitCacheSize
	}
	cache, err := lru.New[object.Hash, *object.CommitObj](size)
	if err != nil {
		return nil, fmt.Errorf("commit cache: %w", err)
	}
	return &commitGraph{store: store, cache: cache}, nil
}

// Commit returns the decoded commit h.
func (g *commitGraph) Commit(h object.Hash) (*object.CommitObj, error) {
	if c, ok := g.cache.Get(h); ok {
		return c, nil
	}
	c, err := g.store.ReadCommit(h)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchCommit, h)
		}
		return nil, err
	}
	g.cache.Add(h, c)
	return c, nil
}

// Ancestors returns every commit reachable from h through parent links,
// excluding h itself.
func (g *commitGraph) Ancestors(h object.Hash) (map[object.Hash]struct{}, error) {
	seen := make(map[object.Hash]struct{})
	stack := []object.Hash{h}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, err := g.Commit(cur)
		if err != nil {
			return nil, fmt.Errorf("ancestors of %s: %w", h, err)
		}
		for _, p := range c.Parents {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			stack = append(stack, p)
		}
	}
	return seen, nil
}

// SplitPoint returns the latest common ancestor of current and given: the
// common ancestor with the fewest parent edges from current. Candidates at
// equal distance resolve by visit order, parent-1 before parent-2.
//
// Equal tips fail with ErrAlreadyUpToDate. When one tip contains the other a
// *FastForwardError is returned.
func (g *commitGraph) SplitPoint(current, given object.Hash) (object.Hash, error) {
	if current == given {
		return "", ErrAlreadyUpToDate
	}

	givenAnc, err := g.Ancestors(given)
	if err != nil {
		return "", err
	}
	if _, ok := givenAnc[current]; ok {
		return "", &FastForwardError{Direction: CurrentBehind, From: current, To: given}
	}
	curAnc, err := g.Ancestors(current)
	if err != nil {
		return "", err
	}
	if _, ok := curAnc[given]; ok {
		return "", &FastForwardError{Direction: GivenBehind, From: given, To: current}
	}

	visited := map[object.Hash]struct{}{current: {}}
	queue := []object.Hash{current}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if _, ok := givenAnc[cur]; ok {
			return cur, nil
		}

		c, err := g.Commit(cur)
		if err != nil {
			return "", err
		}
		for _, p := range c.Parents {
			if _, ok := visited[p]; ok {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, p)
		}
	}

	// Every history descends from the root commit, so this only happens on
	// graphs built outside Init.
	return "", fmt.Errorf("split point %s..%s: no common ancestor", current, given)
}

// CommitObject returns the commit stored under h.
func (r *Repo) CommitObject(h object.Hash) (*object.CommitObj, error) {
	return r.graph.Commit(h)
}

// Ancestors returns every commit reachable from h, excluding h.
func (r *Repo) Ancestors(h object.Hash) (map[object.Hash]struct{}, error) {
	return r.graph.Ancestors(h)
}

// SplitPoint returns the latest common ancestor of two commits; see
// commitGraph.SplitPoint for the error contract.
func (r *Repo) SplitPoint(current, given object.Hash) (object.Hash, error) {
	return r.graph.SplitPoint(current, given)
}
