package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogRecordsCommitsAndBlobs(t *testing.T) {
	r := newTestRepo(t)
	h := commitFiles(t, r, "catalog me", map[string]string{"a.txt": "a"})

	commits, err := r.catalog.Commits()
	require.NoError(t, err)
	require.Len(t, commits, 2)

	var found *CommitSummary
	for i := range commits {
		if commits[i].Hash == h {
			found = &commits[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "catalog me", found.Message)
	assert.Equal(t, "tester", found.Author)
	assert.Equal(t, "master", found.Branch)
	assert.Len(t, found.Parents, 1)

	ok, err := r.catalog.HasBlob(blobHash("a"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.catalog.HasBlob(blobHash("never committed"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenRebuildsMissingCatalog(t *testing.T) {
	r := newTestRepo(t)
	h := commitFiles(t, r, "survives", map[string]string{"a.txt": "a"})
	root := r.RootDir
	require.NoError(t, r.Close())

	require.NoError(t, os.RemoveAll(filepath.Join(root, MetaDirName, "catalog")))

	reopened, err := Open(root, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Find("survives")
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{h}, got)

	all, err := reopened.GlobalLog()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReindexCountsOnlyCommits(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "c1", map[string]string{"a.txt": "a", "b.txt": "b"})

	n, err := r.Reindex()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
