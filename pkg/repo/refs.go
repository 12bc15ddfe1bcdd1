package repo

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
	"go.uber.org/zap"
)

const headsPrefix = "refs/heads/"

// HeadState is the parsed content of .gitlet/HEAD.
type HeadState struct {
	Branch string      // current branch name
	Commit object.Hash // cached current commit
}

func (r *Repo) headPath() string {
	return filepath.Join(r.MetaDir, "HEAD")
}

func (r *Repo) branchRefPath(name string) string {
	return filepath.Join(r.MetaDir, "refs", "heads", name)
}

// ReadHead parses .gitlet/HEAD. The file holds a "ref: refs/heads/<branch>"
// line followed by a "commit <digest>" line.
func (r *Repo) ReadHead() (HeadState, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		return HeadState{}, fmt.Errorf("head: %w: %w", errCorruptMetadata, err)
	}

	var st HeadState
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "ref: "):
			ref := strings.TrimPrefix(line, "ref: ")
			if !strings.HasPrefix(ref, headsPrefix) {
				return HeadState{}, fmt.Errorf("head: %w: unexpected ref %q", errCorruptMetadata, ref)
			}
			st.Branch = strings.TrimPrefix(ref, headsPrefix)
		case strings.HasPrefix(line, "commit "):
			st.Commit = object.Hash(strings.TrimPrefix(line, "commit "))
		default:
			return HeadState{}, fmt.Errorf("head: %w: unexpected line %q", errCorruptMetadata, line)
		}
	}
	if st.Branch == "" {
		return HeadState{}, fmt.Errorf("head: %w: missing branch", errCorruptMetadata)
	}
	return st, nil
}

// writeHead points HEAD at branch and caches its commit.
func (r *Repo) writeHead(branch string, commit object.Hash) error {
	content := fmt.Sprintf("ref: %s%s\ncommit %s\n", headsPrefix, branch, commit)
	if err := writeFileAtomic(r.headPath(), []byte(content)); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	return nil
}

// CurrentBranch returns the branch HEAD points at.
func (r *Repo) CurrentBranch() (string, error) {
	st, err := r.ReadHead()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	return st.Branch, nil
}

// HeadCommit returns the current branch and the digest its ref holds. The
// ref is authoritative: a stale HEAD cache is logged and ignored.
func (r *Repo) HeadCommit() (string, object.Hash, error) {
	st, err := r.ReadHead()
	if err != nil {
		return "", "", err
	}
	h, err := r.ResolveBranch(st.Branch)
	if err != nil {
		return "", "", fmt.Errorf("head: %w", err)
	}
	if st.Commit != "" && st.Commit != h {
		r.log.Warn("HEAD commit cache differs from branch ref",
			zap.String("branch", st.Branch),
			zap.String("cached", string(st.Commit)),
			zap.String("ref", string(h)),
		)
	}
	return st.Branch, h, nil
}

// headCommitObj resolves HEAD and decodes the current commit.
func (r *Repo) headCommitObj() (string, object.Hash, *object.CommitObj, error) {
	branch, h, err := r.HeadCommit()
	if err != nil {
		return "", "", nil, err
	}
	c, err := r.graph.Commit(h)
	if err != nil {
		return "", "", nil, err
	}
	return branch, h, c, nil
}

// ResolveBranch returns the commit a branch points at, or ErrNoSuchBranch.
func (r *Repo) ResolveBranch(name string) (object.Hash, error) {
	if err := validateBranchName(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(r.branchRefPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoSuchBranch, name)
		}
		return "", fmt.Errorf("resolve branch %q: %w", name, err)
	}
	h := object.Hash(strings.TrimSpace(string(data)))
	if !object.IsValidHash(string(h)) {
		return "", fmt.Errorf("resolve branch %q: %w: bad digest %q", name, errCorruptMetadata, h)
	}
	return h, nil
}

func (r *Repo) branchExists(name string) bool {
	info, err := os.Stat(r.branchRefPath(name))
	return err == nil && !info.IsDir()
}

// UpdateRef atomically points branch at h and appends a reflog entry.
func (r *Repo) UpdateRef(branch string, h object.Hash, reason string) error {
	if err := validateBranchName(branch); err != nil {
		return err
	}
	path := r.branchRefPath(branch)
	oldHash, _ := readRefHash(path)

	if err := writeFileAtomic(path, []byte(string(h)+"\n")); err != nil {
		return fmt.Errorf("update ref %q: %w", branch, err)
	}
	if err := r.appendReflog(headsPrefix+branch, oldHash, h, reason); err != nil {
		return fmt.Errorf("update ref %q: %w", branch, err)
	}
	r.log.Debug("ref updated",
		zap.String("branch", branch),
		zap.String("old", string(oldHash)),
		zap.String("commit", string(h)),
		zap.String("reason", reason),
	)
	return nil
}

// advanceHead moves the current branch and the HEAD cache to h.
func (r *Repo) advanceHead(branch string, h object.Hash, reason string) error {
	if err := r.UpdateRef(branch, h, reason); err != nil {
		return err
	}
	return r.writeHead(branch, h)
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// validateBranchName rejects names that cannot be stored as a single file
// under refs/heads.
func validateBranchName(name string) error {
	switch {
	case strings.TrimSpace(name) != name || name == "":
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	case name == "." || name == ".." || strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	case strings.ContainsAny(name, "/\\ \t\n\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	return nil
}
