package repo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ReflogEntry records one update of a branch ref.
type ReflogEntry struct {
	Ref       string
	OldHash   object.Hash
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

func (r *Repo) appendReflog(ref string, oldHash, newHash object.Hash, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}

	logPath := filepath.Join(r.MetaDir, "logs", filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}

	old := string(oldHash)
	if old == "" {
		old = zeroHash
	}
	line := fmt.Sprintf("%s %s %d %s\n", old, newHash, r.now().Unix(), oneLine(reason))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

// ReadReflog returns the reflog of branch (the current branch when empty),
// newest first. A positive limit caps the number of entries.
func (r *Repo) ReadReflog(branch string, limit int) ([]ReflogEntry, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" || branch == "HEAD" {
		cur, err := r.CurrentBranch()
		if err != nil {
			return nil, fmt.Errorf("read reflog: %w", err)
		}
		branch = cur
	}
	if err := validateBranchName(branch); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	refName := headsPrefix + branch

	f, err := os.Open(filepath.Join(r.MetaDir, "logs", filepath.FromSlash(refName)))
	if err != nil {
		if os.IsNotExist(err) {
			if !r.branchExists(branch) {
				return nil, fmt.Errorf("read reflog: %w: %s", ErrNoSuchBranch, branch)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			continue
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		old := object.Hash(parts[0])
		if old == zeroHash {
			old = ""
		}
		entries = append(entries, ReflogEntry{
			Ref:       refName,
			OldHash:   old,
			NewHash:   object.Hash(parts[1]),
			Timestamp: ts,
			Reason:    parts[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
