package repo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// tickingClock returns a clock that advances one second per call, so
// consecutive commits never share a timestamp.
func tickingClock() func() time.Time {
	now := time.Unix(1_700_000_000, 0)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir(), WithLogger(zap.NewNop()), WithClock(tickingClock()))
	require.NoError(t, err)
	r.Config.User.Name = "tester"
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func readFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func fileExists(r *Repo, rel string) bool {
	_, err := os.Stat(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	return err == nil
}

// commitFiles writes, stages and commits files in one step.
func commitFiles(t *testing.T, r *Repo, msg string, files map[string]string) object.Hash {
	t.Helper()
	paths := make([]string, 0, len(files))
	for p, content := range files {
		writeFile(t, r, p, content)
		paths = append(paths, p)
	}
	require.NoError(t, r.Add(paths))
	h, err := r.Commit(msg)
	require.NoError(t, err)
	return h
}

func headHash(t *testing.T, r *Repo) object.Hash {
	t.Helper()
	_, h, err := r.HeadCommit()
	require.NoError(t, err)
	return h
}

func headTree(t *testing.T, r *Repo) object.Tree {
	t.Helper()
	c, err := r.CommitObject(headHash(t, r))
	require.NoError(t, err)
	return c.Tree
}

func blobHash(content string) object.Hash {
	return object.HashBlobData([]byte(content))
}
