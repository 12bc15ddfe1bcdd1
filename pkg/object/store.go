package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned when no object is stored under a hash.
var ErrNotFound = errors.New("object not found")

// ErrCorrupt marks objects whose stored bytes no longer match their hash or
// cannot be decoded. It signals an invariant violation, not a user error.
var ErrCorrupt = errors.New("corrupt object")

// CorruptObjectError describes why an object failed verification.
type CorruptObjectError struct {
	Hash   Hash
	Reason string
}

func (e *CorruptObjectError) Error() string {
	return fmt.Sprintf("object %s: %s: %s", e.Hash, ErrCorrupt, e.Reason)
}

func (e *CorruptObjectError) Is(target error) bool {
	return target == ErrCorrupt
}

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
type Store struct {
	root     string
	compress bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCompression makes the store zstd-encode objects it writes. Reads
// always accept both encodings.
func WithCompression(on bool) StoreOption {
	return func(s *Store) { s.compress = on }
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !IsValidHash(string(h)) {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. The hashed format is
// "type len\0content"; the file holds that envelope, zstd-encoded when
// compression is on. Writing an object that already exists is a no-op.
// Writes are atomic: data is written to a temp file and then renamed into
// place.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	raw := append(envelopeHeader(objType, data), data...)
	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	if s.compress {
		encoded, err := compressZstd(raw)
		if err != nil {
			return "", fmt.Errorf("object write compress: %w", err)
		}
		raw = encoded
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content. The
// envelope is re-hashed, so a tampered or truncated file yields ErrCorrupt.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if !IsValidHash(string(h)) {
		return "", nil, fmt.Errorf("object read %q: %w", h, ErrNotFound)
	}
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	if isZstdEncoded(raw) {
		raw, err = decompressZstd(raw)
		if err != nil {
			return "", nil, &CorruptObjectError{Hash: h, Reason: "zstd decode: " + err.Error()}
		}
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, &CorruptObjectError{Hash: h, Reason: "invalid format (no NUL)"}
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	typeName, lengthText, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, &CorruptObjectError{Hash: h, Reason: fmt.Sprintf("invalid header %q", header)}
	}
	objType := ObjectType(typeName)
	length, err := strconv.Atoi(lengthText)
	if err != nil {
		return "", nil, &CorruptObjectError{Hash: h, Reason: fmt.Sprintf("invalid length %q", lengthText)}
	}
	if len(content) != length {
		return "", nil, &CorruptObjectError{
			Hash:   h,
			Reason: fmt.Sprintf("length mismatch (header=%d, actual=%d)", length, len(content)),
		}
	}
	if got := HashObject(objType, content); got != h {
		return "", nil, &CorruptObjectError{Hash: h, Reason: "content hashes to " + string(got)}
	}

	return objType, content, nil
}

// Delete removes an object. Deleting a missing object is not an error.
// Callers are responsible for never deleting objects still referenced by a
// commit.
func (s *Store) Delete(h Hash) error {
	if !IsValidHash(string(h)) {
		return nil
	}
	p := s.objectPath(h)
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("object delete %s: %w", h, err)
	}
	// Drop the fan-out directory once it is empty.
	dir := filepath.Dir(p)
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		_ = os.Remove(dir)
	}
	return nil
}

// Walk calls fn for every stored object hash in lexical order. Returning an
// error from fn stops the walk.
func (s *Store) Walk(fn func(Hash) error) error {
	objectsDir := filepath.Join(s.root, "objects")
	fanouts, err := os.ReadDir(objectsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("object walk: %w", err)
	}

	var hashes []Hash
	for _, fan := range fanouts {
		if !fan.IsDir() || len(fan.Name()) != 2 {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(objectsDir, fan.Name()))
		if err != nil {
			return fmt.Errorf("object walk %s: %w", fan.Name(), err)
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
				continue
			}
			h := Hash(fan.Name() + e.Name())
			if IsValidHash(string(h)) {
				hashes = append(hashes, h)
			}
		}
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	for _, h := range hashes {
		if err := fn(h); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, &CorruptObjectError{Hash: h, Reason: err.Error()}
	}
	return c, nil
}

// ReadType returns the type of a stored object.
func (s *Store) ReadType(h Hash) (ObjectType, error) {
	objType, _, err := s.Read(h)
	return objType, err
}
