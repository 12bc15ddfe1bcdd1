package object

import "sort"

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// Short returns the first n characters of the hash, or the whole hash when
// it is shorter.
func (h Hash) Short(n int) string {
	if len(h) <= n {
		return string(h)
	}
	return string(h[:n])
}

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeCommit ObjectType = "commit"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// Tree is a full snapshot mapping repository-relative, slash-separated paths
// to blob hashes.
type Tree map[string]Hash

// Paths returns the tree's paths in lexical order.
func (t Tree) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a shallow copy of t. A nil tree clones to an empty one.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for p, h := range t {
		out[p] = h
	}
	return out
}

// Lookup returns the blob hash recorded for path.
func (t Tree) Lookup(path string) (Hash, bool) {
	h, ok := t[path]
	return h, ok
}

// CommitObj is an immutable snapshot plus metadata. Parents holds zero
// (root), one, or two (merge) hashes in order.
type CommitObj struct {
	Parents   []Hash
	Author    string
	Timestamp int64
	Branch    string
	Tree      Tree
	Message   string
}

// Parent1 returns the first parent, or "" for the root commit.
func (c *CommitObj) Parent1() Hash {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// Parent2 returns the merged-in parent, or "" for non-merge commits.
func (c *CommitObj) Parent2() Hash {
	if len(c.Parents) < 2 {
		return ""
	}
	return c.Parents[1]
}

// IsMerge reports whether c has two parents.
func (c *CommitObj) IsMerge() bool {
	return len(c.Parents) == 2
}
