package object

import (
	"fmt"
	"sort"
	"strings"
)

// ReachableSet returns all object hashes reachable from roots by following
// commit parents and tree entries. Missing roots are ignored.
func (s *Store) ReachableSet(roots []Hash) (map[Hash]struct{}, error) {
	roots = uniqueNormalizedHashes(roots)
	out := make(map[Hash]struct{}, len(roots))
	if len(roots) == 0 {
		return out, nil
	}

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == "" {
			continue
		}
		if _, ok := out[h]; ok {
			continue
		}
		if !s.Has(h) {
			continue
		}
		out[h] = struct{}{}

		objType, data, err := s.Read(h)
		if err != nil {
			return nil, fmt.Errorf("reachable set read %s: %w", h, err)
		}
		refs, err := referencedHashes(objType, data)
		if err != nil {
			return nil, fmt.Errorf("reachable set parse %s (%s): %w", h, objType, err)
		}
		stack = append(stack, refs...)
	}

	return out, nil
}

func referencedHashes(objType ObjectType, data []byte) ([]Hash, error) {
	switch objType {
	case TypeBlob:
		return nil, nil
	case TypeCommit:
		commit, err := UnmarshalCommit(data)
		if err != nil {
			return nil, err
		}
		refs := make([]Hash, 0, len(commit.Parents)+len(commit.Tree))
		refs = append(refs, commit.Parents...)
		for _, p := range commit.Tree.Paths() {
			refs = append(refs, commit.Tree[p])
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported object type %q", objType)
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
