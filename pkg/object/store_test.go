package object

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytesDeterminism(t *testing.T) {
	data := []byte("hello world")
	h1 := HashBytes(data)
	h2 := HashBytes(data)
	assert.Equal(t, h1, h2)
	assert.Len(t, string(h1), 64)
	assert.NotEqual(t, h1, HashBytes([]byte("hello world!")))
}

func TestHashObjectEnvelope(t *testing.T) {
	data := []byte("hello")
	h1 := HashObject(TypeBlob, data)

	// The envelope makes the object hash differ from the raw content hash.
	assert.NotEqual(t, HashBytes(data), h1)
	assert.Equal(t, h1, HashObject(TypeBlob, data))
	assert.NotEqual(t, h1, HashObject(TypeCommit, data))
	assert.Equal(t, h1, HashBlobData(data))
}

func tempStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	return NewStore(t.TempDir(), opts...)
}

func TestStoreWriteRead(t *testing.T) {
	for _, compress := range []bool{false, true} {
		s := tempStore(t, WithCompression(compress))
		data := []byte("hello world")

		h, err := s.Write(TypeBlob, data)
		require.NoError(t, err)
		assert.True(t, s.Has(h))

		gotType, gotData, err := s.Read(h)
		require.NoError(t, err)
		assert.Equal(t, TypeBlob, gotType)
		assert.Equal(t, data, gotData)
	}
}

func TestStoreDeduplicatesIdenticalContent(t *testing.T) {
	s := tempStore(t)

	h1, err := s.WriteBlob(&Blob{Data: []byte("same bytes")})
	require.NoError(t, err)
	h2, err := s.WriteBlob(&Blob{Data: []byte("same bytes")})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	var count int
	require.NoError(t, s.Walk(func(Hash) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count, "identical content must be stored once")
}

func TestStoreCompressedAndRawCoexist(t *testing.T) {
	dir := t.TempDir()
	raw := NewStore(dir)
	zst := NewStore(dir, WithCompression(true))

	h1, err := raw.WriteBlob(&Blob{Data: []byte("written raw")})
	require.NoError(t, err)
	h2, err := zst.WriteBlob(&Blob{Data: []byte("written compressed")})
	require.NoError(t, err)

	b1, err := zst.ReadBlob(h1)
	require.NoError(t, err)
	assert.Equal(t, "written raw", string(b1.Data))

	b2, err := raw.ReadBlob(h2)
	require.NoError(t, err)
	assert.Equal(t, "written compressed", string(b2.Data))
}

func TestStoreReadMissing(t *testing.T) {
	s := tempStore(t)
	_, _, err := s.Read(HashBytes([]byte("never written")))
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = s.Read("not-a-hash")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, s.Has("not-a-hash"))
}

func TestStoreDetectsCorruption(t *testing.T) {
	s := tempStore(t)
	h, err := s.WriteBlob(&Blob{Data: []byte("original")})
	require.NoError(t, err)

	// Same length so only the digest check can catch it.
	path := filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
	require.NoError(t, os.WriteFile(path, []byte("blob 8\x00tampered"), 0o644))

	_, err = s.ReadBlob(h)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)

	var corrupt *CorruptObjectError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, h, corrupt.Hash)
}

func TestStoreTypeMismatch(t *testing.T) {
	s := tempStore(t)
	h, err := s.WriteBlob(&Blob{Data: []byte("not a commit")})
	require.NoError(t, err)

	_, err = s.ReadCommit(h)
	assert.ErrorContains(t, err, "type mismatch")
}

func TestStoreDelete(t *testing.T) {
	s := tempStore(t)
	h, err := s.WriteBlob(&Blob{Data: []byte("short lived")})
	require.NoError(t, err)

	require.NoError(t, s.Delete(h))
	assert.False(t, s.Has(h))
	// Deleting twice is fine.
	require.NoError(t, s.Delete(h))

	_, err = os.Stat(filepath.Join(s.root, "objects", string(h[:2])))
	assert.True(t, os.IsNotExist(err), "empty fan-out directory should be removed")
}

func TestStoreCommitRoundTrip(t *testing.T) {
	s := tempStore(t, WithCompression(true))
	blob, err := s.WriteBlob(&Blob{Data: []byte("a")})
	require.NoError(t, err)

	c := &CommitObj{
		Author:    "tester",
		Timestamp: 1700000000,
		Branch:    "master",
		Tree:      Tree{"wug.txt": blob},
		Message:   "c1",
	}
	h, err := s.WriteCommit(c)
	require.NoError(t, err)
	assert.Equal(t, HashCommit(c), h)

	got, err := s.ReadCommit(h)
	require.NoError(t, err)
	assert.Equal(t, c.Message, got.Message)
	assert.Equal(t, c.Tree, got.Tree)
	assert.Empty(t, got.Parent1())
}

func TestReachableSetFollowsParentsAndTrees(t *testing.T) {
	s := tempStore(t)
	b1, err := s.WriteBlob(&Blob{Data: []byte("one")})
	require.NoError(t, err)
	b2, err := s.WriteBlob(&Blob{Data: []byte("two")})
	require.NoError(t, err)
	orphan, err := s.WriteBlob(&Blob{Data: []byte("orphan")})
	require.NoError(t, err)

	root, err := s.WriteCommit(&CommitObj{Message: "root", Tree: Tree{}})
	require.NoError(t, err)
	c1, err := s.WriteCommit(&CommitObj{Parents: []Hash{root}, Message: "c1", Tree: Tree{"a": b1}})
	require.NoError(t, err)
	c2, err := s.WriteCommit(&CommitObj{Parents: []Hash{c1}, Message: "c2", Tree: Tree{"a": b2}})
	require.NoError(t, err)

	reach, err := s.ReachableSet([]Hash{c2})
	require.NoError(t, err)
	for _, h := range []Hash{root, c1, c2, b1, b2} {
		assert.Contains(t, reach, h)
	}
	assert.NotContains(t, reach, orphan)
}
