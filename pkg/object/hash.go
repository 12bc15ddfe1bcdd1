package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-256 of the envelope "type len\0content".
// Two objects of the same type with identical content always share a hash.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha256.New()
	h.Write(envelopeHeader(objType, data))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashBlobData returns the hash a blob holding data is stored under.
func HashBlobData(data []byte) Hash {
	return HashObject(TypeBlob, data)
}

// HashCommit returns the hash c is stored under.
func HashCommit(c *CommitObj) Hash {
	return HashObject(TypeCommit, MarshalCommit(c))
}

// IsValidHash reports whether s looks like a full hex SHA-256 digest.
func IsValidHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func envelopeHeader(objType ObjectType, data []byte) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", objType, len(data)))
}
