package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// ResolveCommit maps a full or abbreviated commit digest to the full digest.
// Unknown ids fail with ErrNoSuchCommit, prefixes matching several commits
// with ErrAmbiguousCommit.
func (r *Repo) ResolveCommit(id string) (object.Hash, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" || strings.Trim(id, "0123456789abcdef") != "" {
		return "", fmt.Errorf("%w: %q", ErrNoSuchCommit, id)
	}

	matches, err := r.catalog.MatchPrefix(id)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNoSuchCommit, id)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %d commits", ErrAmbiguousCommit, id, len(matches))
	}
}
