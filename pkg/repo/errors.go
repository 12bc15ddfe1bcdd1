package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// Recoverable conditions reported by repository operations. Match them with
// errors.Is; operations wrap them with context.
var (
	ErrNotInitialized            = errors.New("not in an initialized gitlet directory")
	ErrAlreadyInitialized        = errors.New("a gitlet version-control system already exists in the current directory")
	ErrFileNotFound              = errors.New("file does not exist")
	ErrNothingToCommit           = errors.New("no changes added to the commit")
	ErrEmptyMessage              = errors.New("please enter a commit message")
	ErrNoSuchCommit              = errors.New("no commit with that id exists")
	ErrAmbiguousCommit           = errors.New("commit id is ambiguous")
	ErrNoMatchingCommit          = errors.New("found no commit with that message")
	ErrFileNotInCommit           = errors.New("file does not exist in that commit")
	ErrNoSuchBranch              = errors.New("a branch with that name does not exist")
	ErrBranchExists              = errors.New("a branch with that name already exists")
	ErrInvalidBranchName         = errors.New("invalid branch name")
	ErrAlreadyOnBranch           = errors.New("no need to checkout the current branch")
	ErrCannotRemoveCurrentBranch = errors.New("cannot remove the current branch")
	ErrNothingToRemove           = errors.New("no reason to remove the file")
	ErrSelfMerge                 = errors.New("cannot merge a branch with itself")
	ErrUncommittedChanges        = errors.New("you have uncommitted changes")
	ErrUntrackedObstruction      = errors.New("there is an untracked file in the way; delete it, or add and commit it first")
	ErrAlreadyUpToDate           = errors.New("given branch is an ancestor of the current branch")
	ErrFastForward               = errors.New("fast-forward")
	ErrMergeConflict             = errors.New("encountered a merge conflict")
)

// UntrackedObstructionError lists the untracked working files an operation
// would have overwritten.
type UntrackedObstructionError struct {
	Paths []string
}

func (e *UntrackedObstructionError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrUntrackedObstruction, strings.Join(e.Paths, ", "))
}

func (e *UntrackedObstructionError) Is(target error) bool {
	return target == ErrUntrackedObstruction
}

// FastForwardDirection says which side of a merge is behind the other.
type FastForwardDirection int

const (
	// CurrentBehind: the current branch tip is an ancestor of the given tip.
	CurrentBehind FastForwardDirection = iota
	// GivenBehind: the given branch tip is an ancestor of the current tip.
	GivenBehind
)

func (d FastForwardDirection) String() string {
	switch d {
	case CurrentBehind:
		return "current-behind"
	case GivenBehind:
		return "given-behind"
	default:
		return fmt.Sprintf("FastForwardDirection(%d)", int(d))
	}
}

// FastForwardError reports that no merge commit is needed because one tip
// already contains the other. From is the behind tip, To the ahead tip.
type FastForwardError struct {
	Direction FastForwardDirection
	From      object.Hash
	To        object.Hash
}

func (e *FastForwardError) Error() string {
	if e.Direction == CurrentBehind {
		return "current branch fast-forwarded"
	}
	return ErrAlreadyUpToDate.Error()
}

// Is matches ErrFastForward, and ErrAlreadyUpToDate when the given side is
// the one behind.
func (e *FastForwardError) Is(target error) bool {
	if target == ErrAlreadyUpToDate {
		return e.Direction == GivenBehind
	}
	return target == ErrFastForward
}

// IsFatal reports whether err indicates repository corruption rather than
// a recoverable, user-facing condition.
func IsFatal(err error) bool {
	return errors.Is(err, object.ErrCorrupt) || errors.Is(err, errCorruptMetadata)
}

// errCorruptMetadata marks unreadable HEAD, ref, index or config files.
var errCorruptMetadata = errors.New("corrupt repository metadata")
