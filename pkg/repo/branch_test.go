package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBranchPointsAtHead(t *testing.T) {
	r := newTestRepo(t)
	h := commitFiles(t, r, "c1", map[string]string{"a.txt": "a"})

	require.NoError(t, r.CreateBranch("feature"))

	got, err := r.ResolveBranch("feature")
	require.NoError(t, err)
	assert.Equal(t, h, got)

	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "master", branch, "creating a branch does not switch to it")

	names, err := r.ListBranches()
	require.NoError(t, err)
	assert.Equal(t, []string{"feature", "master"}, names)
}

func TestCreateBranchTwiceFails(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.CreateBranch("feature"))
	assert.ErrorIs(t, r.CreateBranch("feature"), ErrBranchExists)
}

func TestCreateBranchRejectsBadNames(t *testing.T) {
	r := newTestRepo(t)
	for _, name := range []string{"", "a/b", "..", ".hidden", "with space"} {
		assert.ErrorIs(t, r.CreateBranch(name), ErrInvalidBranchName, name)
	}
}

func TestDeleteBranch(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.CreateBranch("feature"))

	require.NoError(t, r.DeleteBranch("feature"))
	_, err := r.ResolveBranch("feature")
	assert.ErrorIs(t, err, ErrNoSuchBranch)

	assert.ErrorIs(t, r.DeleteBranch("feature"), ErrNoSuchBranch)
	assert.ErrorIs(t, r.DeleteBranch("master"), ErrCannotRemoveCurrentBranch)
}

func TestDeleteBranchKeepsCommits(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.CreateBranch("feature"))
	require.NoError(t, r.CheckoutBranch("feature"))
	h := commitFiles(t, r, "on feature", map[string]string{"f.txt": "f"})
	require.NoError(t, r.CheckoutBranch("master"))

	require.NoError(t, r.DeleteBranch("feature"))

	c, err := r.CommitObject(h)
	require.NoError(t, err)
	assert.Equal(t, "on feature", c.Message)
	assert.Equal(t, "feature", c.Branch)
}
