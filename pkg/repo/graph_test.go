package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dag writes bare commits straight into the store so graph shapes can be
// built without touching the working tree.
type dag struct {
	t *testing.T
	r *Repo
	n int
}

func (d *dag) commit(parents ...object.Hash) object.Hash {
	d.t.Helper()
	d.n++
	h, err := d.r.Store.WriteCommit(&object.CommitObj{
		Parents:   parents,
		Author:    "tester",
		Timestamp: int64(d.n),
		Branch:    DefaultBranch,
		Tree:      object.Tree{},
		Message:   fmt.Sprintf("c%d", d.n),
	})
	require.NoError(d.t, err)
	return h
}

func TestAncestorsFollowsBothParents(t *testing.T) {
	r := newTestRepo(t)
	d := &dag{t: t, r: r}
	root := headHash(t, r)

	a := d.commit(root)
	b := d.commit(root)
	m := d.commit(a, b)

	anc, err := r.Ancestors(m)
	require.NoError(t, err)
	assert.Equal(t, map[object.Hash]struct{}{a: {}, b: {}, root: {}}, anc)

	anc, err = r.Ancestors(root)
	require.NoError(t, err)
	assert.Empty(t, anc)
}

func TestSplitPointSameCommit(t *testing.T) {
	r := newTestRepo(t)
	root := headHash(t, r)

	_, err := r.SplitPoint(root, root)
	assert.ErrorIs(t, err, ErrAlreadyUpToDate)
}

func TestSplitPointFastForward(t *testing.T) {
	r := newTestRepo(t)
	d := &dag{t: t, r: r}
	root := headHash(t, r)
	a := d.commit(root)
	b := d.commit(a)

	_, err := r.SplitPoint(a, b)
	var ff *FastForwardError
	require.True(t, errors.As(err, &ff))
	assert.Equal(t, CurrentBehind, ff.Direction)
	assert.Equal(t, a, ff.From)
	assert.Equal(t, b, ff.To)
	assert.ErrorIs(t, err, ErrFastForward)
	assert.NotErrorIs(t, err, ErrAlreadyUpToDate)

	_, err = r.SplitPoint(b, root)
	require.True(t, errors.As(err, &ff))
	assert.Equal(t, GivenBehind, ff.Direction)
	assert.ErrorIs(t, err, ErrAlreadyUpToDate)
}

func TestSplitPointDivergent(t *testing.T) {
	r := newTestRepo(t)
	d := &dag{t: t, r: r}
	root := headHash(t, r)
	base := d.commit(root)
	left := d.commit(base)
	right := d.commit(d.commit(base))

	split, err := r.SplitPoint(left, right)
	require.NoError(t, err)
	assert.Equal(t, base, split)

	split, err = r.SplitPoint(right, left)
	require.NoError(t, err)
	assert.Equal(t, base, split)
}

func TestSplitPointAfterEarlierMerge(t *testing.T) {
	r := newTestRepo(t)
	d := &dag{t: t, r: r}
	root := headHash(t, r)

	//  root - a1 - a2 - m        (master)
	//     \            /
	//      b1 -------+-- b2      (feature)
	a1 := d.commit(root)
	b1 := d.commit(root)
	a2 := d.commit(a1)
	m := d.commit(a2, b1)
	b2 := d.commit(b1)

	split, err := r.SplitPoint(m, b2)
	require.NoError(t, err)
	assert.Equal(t, b1, split, "latest common ancestor is the merged-in commit, not root")

	split, err = r.SplitPoint(b2, m)
	require.NoError(t, err)
	assert.Equal(t, b1, split)
}

func TestSplitPointPrefersNearestAncestor(t *testing.T) {
	r := newTestRepo(t)
	d := &dag{t: t, r: r}
	root := headHash(t, r)

	// A long first-parent chain on one side and a short second-parent path
	// to a newer shared commit on the other.
	shared := d.commit(root)
	given := d.commit(shared)
	old := root
	for i := 0; i < 5; i++ {
		old = d.commit(old)
	}
	current := d.commit(old, shared)

	split, err := r.SplitPoint(current, given)
	require.NoError(t, err)
	assert.Equal(t, shared, split)
}

func TestCommitGraphCachesCommits(t *testing.T) {
	r := newTestRepo(t)
	h := headHash(t, r)

	first, err := r.CommitObject(h)
	require.NoError(t, err)
	second, err := r.CommitObject(h)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = r.CommitObject(object.HashBytes([]byte("missing")))
	assert.ErrorIs(t, err, ErrNoSuchCommit)
}
