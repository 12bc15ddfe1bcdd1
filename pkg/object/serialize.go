package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj to a deterministic text format:
//
//	parent H     (zero, one or two)
//	author A
//	timestamp T
//	branch B
//	file H path  (one per tree entry, sorted by path)
//
//	message
//
// Header values are single-line; embedded newlines are folded to spaces.
// Paths holding control characters, or starting with a double quote, are
// written as Go-quoted strings so every path round-trips.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", headerValue(c.Author))
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	fmt.Fprintf(&buf, "branch %s\n", headerValue(c.Branch))
	for _, path := range c.Tree.Paths() {
		fmt.Fprintf(&buf, "file %s %s\n", string(c.Tree[path]), encodePath(path))
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

func encodePath(p string) string {
	if strings.HasPrefix(p, `"`) || strings.IndexFunc(p, unicode.IsControl) >= 0 {
		return strconv.Quote(p)
	}
	return p
}

func decodePath(p string) (string, error) {
	if !strings.HasPrefix(p, `"`) {
		return p, nil
	}
	return strconv.Unquote(p)
}

func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message, Tree: make(Tree)}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "parent":
			if len(c.Parents) == 2 {
				return nil, fmt.Errorf("unmarshal commit: more than two parents")
			}
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			c.Author = val
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Timestamp = ts
		case "branch":
			c.Branch = val
		case "file":
			h, raw, ok := strings.Cut(val, " ")
			if !ok || raw == "" {
				return nil, fmt.Errorf("unmarshal commit: malformed file entry %q", line)
			}
			path, err := decodePath(raw)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad quoted path %q: %w", raw, err)
			}
			c.Tree[path] = Hash(h)
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}
