package main

import (
	"errors"
	"strings"
	"unicode"

	"github.com/odvcencio/gitlet/pkg/repo"
)

const (
	exitFailure = 1
	exitCorrupt = 2
)

// errIncorrectOperands reports a command line the command cannot interpret.
var errIncorrectOperands = errors.New("incorrect operands")

// userFacing lists the conditions printed as a bare sentence instead of
// the wrapped error chain.
var userFacing = []error{
	repo.ErrNotInitialized,
	repo.ErrAlreadyInitialized,
	repo.ErrFileNotFound,
	repo.ErrNothingToCommit,
	repo.ErrEmptyMessage,
	repo.ErrNoSuchCommit,
	repo.ErrAmbiguousCommit,
	repo.ErrNoMatchingCommit,
	repo.ErrFileNotInCommit,
	repo.ErrNoSuchBranch,
	repo.ErrBranchExists,
	repo.ErrInvalidBranchName,
	repo.ErrAlreadyOnBranch,
	repo.ErrCannotRemoveCurrentBranch,
	repo.ErrNothingToRemove,
	repo.ErrSelfMerge,
	repo.ErrUncommittedChanges,
	repo.ErrUntrackedObstruction,
	repo.ErrAlreadyUpToDate,
	errIncorrectOperands,
}

func userMessage(err error) string {
	if repo.IsFatal(err) {
		return "fatal: " + err.Error()
	}
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}
	return err.Error()
}

func exitCode(err error) int {
	if repo.IsFatal(err) {
		return exitCorrupt
	}
	return exitFailure
}

// sentence capitalises s and terminates it with a period.
func sentence(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	out := string(r)
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}
