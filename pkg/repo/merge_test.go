package repo

import (
	"errors"
	"testing"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTreesClassification(t *testing.T) {
	x, y, z := blobHash("x"), blobHash("y"), blobHash("z")
	tree := func(h object.Hash) object.Tree {
		if h == "" {
			return object.Tree{}
		}
		return object.Tree{"f": h}
	}

	tests := []struct {
		name              string
		split, cur, given object.Hash
		want              *FileMergeReport
	}{
		{name: "unchanged on both sides", split: x, cur: x, given: x},
		{name: "modified only in given", split: x, cur: x, given: y,
			want: &FileMergeReport{Path: "f", Status: MergeTaken, Blob: y}},
		{name: "modified only in current", split: x, cur: y, given: x},
		{name: "removed in given, unchanged in current", split: x, cur: x, given: "",
			want: &FileMergeReport{Path: "f", Status: MergeDeleted}},
		{name: "removed in current, unchanged in given", split: x, cur: "", given: x},
		{name: "added only in given", split: "", cur: "", given: y,
			want: &FileMergeReport{Path: "f", Status: MergeTaken, Blob: y}},
		{name: "added only in current", split: "", cur: y, given: ""},
		{name: "both modified identically", split: x, cur: y, given: y},
		{name: "both modified differently", split: x, cur: y, given: z,
			want: &FileMergeReport{Path: "f", Status: MergeConflict, Ours: y, Theirs: z}},
		{name: "removed in current, modified in given", split: x, cur: "", given: z,
			want: &FileMergeReport{Path: "f", Status: MergeConflict, Theirs: z}},
		{name: "modified in current, removed in given", split: x, cur: y, given: "",
			want: &FileMergeReport{Path: "f", Status: MergeConflict, Ours: y}},
		{name: "added differently on both sides", split: "", cur: y, given: z,
			want: &FileMergeReport{Path: "f", Status: MergeConflict, Ours: y, Theirs: z}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeTrees(tree(tt.split), tree(tt.cur), tree(tt.given))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, *tt.want, got[0])
		})
	}
}

func TestRenderFileConflict(t *testing.T) {
	got := renderFileConflict([]byte("ours\n"), []byte("theirs"))
	assert.Equal(t, "<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>>\n", string(got))

	got = renderFileConflict(nil, []byte("theirs\n"))
	assert.Equal(t, "<<<<<<< HEAD\n=======\ntheirs\n>>>>>>>\n", string(got))
}

// divergedRepo builds master and feature branches that both moved past a
// shared commit.
func divergedRepo(t *testing.T) (*Repo, object.Hash) {
	t.Helper()
	r := newTestRepo(t)
	base := commitFiles(t, r, "base", map[string]string{
		"conflict.txt": "base\n",
		"theirs.txt":   "base\n",
		"gone.txt":     "base\n",
		"ours.txt":     "base\n",
	})
	require.NoError(t, r.CreateBranch("feature"))

	require.NoError(t, r.CheckoutBranch("feature"))
	writeFile(t, r, "conflict.txt", "feature\n")
	writeFile(t, r, "theirs.txt", "feature\n")
	writeFile(t, r, "sub/new.txt", "added on feature\n")
	require.NoError(t, r.Add([]string{"conflict.txt", "theirs.txt", "sub/new.txt"}))
	require.NoError(t, r.Remove("gone.txt"))
	_, err := r.Commit("feature work")
	require.NoError(t, err)

	require.NoError(t, r.CheckoutBranch("master"))
	writeFile(t, r, "conflict.txt", "master\n")
	writeFile(t, r, "ours.txt", "master\n")
	require.NoError(t, r.Add([]string{"conflict.txt", "ours.txt"}))
	_, err = r.Commit("master work")
	require.NoError(t, err)
	return r, base
}

func TestMergeDivergedBranches(t *testing.T) {
	r, base := divergedRepo(t)
	masterTip := headHash(t, r)
	featureTip, err := r.ResolveBranch("feature")
	require.NoError(t, err)

	report, err := r.Merge("feature")
	require.NoError(t, err)

	assert.Equal(t, base, report.Base)
	assert.True(t, report.HasConflicts)
	assert.Equal(t, 1, report.TotalConflicts)

	merged, err := r.CommitObject(report.MergeCommit)
	require.NoError(t, err)
	assert.Equal(t, []object.Hash{masterTip, featureTip}, merged.Parents)
	assert.Equal(t, "Merged feature into master.", merged.Message)
	assert.Equal(t, report.MergeCommit, headHash(t, r))

	assert.Equal(t, "<<<<<<< HEAD\nmaster\n=======\nfeature\n>>>>>>>\n", readFile(t, r, "conflict.txt"))
	assert.Equal(t, "feature\n", readFile(t, r, "theirs.txt"))
	assert.Equal(t, "master\n", readFile(t, r, "ours.txt"))
	assert.Equal(t, "added on feature\n", readFile(t, r, "sub/new.txt"))
	assert.False(t, fileExists(r, "gone.txt"))

	assert.Equal(t, object.Tree{
		"conflict.txt": blobHash("<<<<<<< HEAD\nmaster\n=======\nfeature\n>>>>>>>\n"),
		"theirs.txt":   blobHash("feature\n"),
		"ours.txt":     blobHash("master\n"),
		"sub/new.txt":  blobHash("added on feature\n"),
	}, merged.Tree)

	stg, err := r.ReadStaging()
	require.NoError(t, err)
	assert.True(t, stg.IsEmpty())
}

func TestMergeCleanHasNoConflicts(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"a.txt": "a\n", "b.txt": "b\n"})
	require.NoError(t, r.CreateBranch("feature"))
	commitFiles(t, r, "master edits a", map[string]string{"a.txt": "a2\n"})
	require.NoError(t, r.CheckoutBranch("feature"))
	commitFiles(t, r, "feature edits b", map[string]string{"b.txt": "b2\n"})
	require.NoError(t, r.CheckoutBranch("master"))

	report, err := r.Merge("feature")
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
	assert.Equal(t, "a2\n", readFile(t, r, "a.txt"))
	assert.Equal(t, "b2\n", readFile(t, r, "b.txt"))
}

func TestMergePreconditions(t *testing.T) {
	t.Run("no such branch", func(t *testing.T) {
		r := newTestRepo(t)
		_, err := r.Merge("nope")
		assert.ErrorIs(t, err, ErrNoSuchBranch)
	})

	t.Run("self merge", func(t *testing.T) {
		r := newTestRepo(t)
		_, err := r.Merge("master")
		assert.ErrorIs(t, err, ErrSelfMerge)
	})

	t.Run("staged addition", func(t *testing.T) {
		r, _ := divergedRepo(t)
		writeFile(t, r, "pending.txt", "x")
		require.NoError(t, r.Add([]string{"pending.txt"}))
		_, err := r.Merge("feature")
		assert.ErrorIs(t, err, ErrUncommittedChanges)
	})

	t.Run("staged removal", func(t *testing.T) {
		r, _ := divergedRepo(t)
		require.NoError(t, r.Remove("ours.txt"))
		_, err := r.Merge("feature")
		assert.ErrorIs(t, err, ErrUncommittedChanges)
	})

	t.Run("untracked file in the way", func(t *testing.T) {
		r, _ := divergedRepo(t)
		before := headHash(t, r)
		writeFile(t, r, "sub/new.txt", "local scratch\n")

		_, err := r.Merge("feature")
		var obstruction *UntrackedObstructionError
		require.True(t, errors.As(err, &obstruction))
		assert.Equal(t, []string{"sub/new.txt"}, obstruction.Paths)
		assert.ErrorIs(t, err, ErrUntrackedObstruction)

		assert.Equal(t, before, headHash(t, r))
		assert.Equal(t, "master\n", readFile(t, r, "conflict.txt"))
		assert.Equal(t, "local scratch\n", readFile(t, r, "sub/new.txt"))
	})

	t.Run("untracked file where a directory is needed", func(t *testing.T) {
		r, _ := divergedRepo(t)
		before := headHash(t, r)
		writeFile(t, r, "sub", "scratch\n")

		_, err := r.Merge("feature")
		var obstruction *UntrackedObstructionError
		require.True(t, errors.As(err, &obstruction))
		assert.Equal(t, []string{"sub"}, obstruction.Paths)

		assert.Equal(t, before, headHash(t, r))
		assert.True(t, fileExists(r, "gone.txt"))
		assert.Equal(t, "base\n", readFile(t, r, "theirs.txt"))
		assert.Equal(t, "scratch\n", readFile(t, r, "sub"))
	})

	t.Run("untracked file with identical content", func(t *testing.T) {
		r, _ := divergedRepo(t)
		writeFile(t, r, "sub/new.txt", "added on feature\n")
		_, err := r.Merge("feature")
		assert.NoError(t, err)
	})
}

func TestMergeFastForwardsCurrentBranch(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"a.txt": "a"})
	require.NoError(t, r.CreateBranch("feature"))
	require.NoError(t, r.CheckoutBranch("feature"))
	featureTip := commitFiles(t, r, "ahead", map[string]string{"b.txt": "b"})
	require.NoError(t, r.CheckoutBranch("master"))
	require.False(t, fileExists(r, "b.txt"))

	before, err := r.GlobalLog()
	require.NoError(t, err)

	report, err := r.Merge("feature")
	assert.Nil(t, report)
	require.ErrorIs(t, err, ErrFastForward)
	var ff *FastForwardError
	require.True(t, errors.As(err, &ff))
	assert.Equal(t, CurrentBehind, ff.Direction)

	assert.Equal(t, featureTip, headHash(t, r))
	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
	assert.Equal(t, "b", readFile(t, r, "b.txt"))

	after, err := r.GlobalLog()
	require.NoError(t, err)
	assert.Len(t, after, len(before), "fast-forward must not create a commit")
}

func TestMergeGivenBehindAdvancesGivenRef(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"a.txt": "a"})
	require.NoError(t, r.CreateBranch("old"))
	tip := commitFiles(t, r, "newer", map[string]string{"a.txt": "a2"})

	_, err := r.Merge("old")
	require.ErrorIs(t, err, ErrAlreadyUpToDate)
	var ff *FastForwardError
	require.True(t, errors.As(err, &ff))
	assert.Equal(t, GivenBehind, ff.Direction)

	oldTip, err := r.ResolveBranch("old")
	require.NoError(t, err)
	assert.Equal(t, tip, oldTip)
	assert.Equal(t, tip, headHash(t, r))
}

func TestMergeSameTip(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.CreateBranch("twin"))

	_, err := r.Merge("twin")
	assert.ErrorIs(t, err, ErrAlreadyUpToDate)
	assert.NotErrorIs(t, err, ErrFastForward)
}

func TestMergeReplacesDeletedDirectoryWithFile(t *testing.T) {
	r := newTestRepo(t)
	commitFiles(t, r, "base", map[string]string{"d/x.txt": "x", "a.txt": "a"})
	require.NoError(t, r.CreateBranch("feature"))

	require.NoError(t, r.CheckoutBranch("feature"))
	require.NoError(t, r.Remove("d/x.txt"))
	commitFiles(t, r, "d becomes a file", map[string]string{"d": "file\n"})

	require.NoError(t, r.CheckoutBranch("master"))
	commitFiles(t, r, "master work", map[string]string{"a.txt": "master"})

	report, err := r.Merge("feature")
	require.NoError(t, err)
	assert.False(t, report.HasConflicts)
	assert.Equal(t, "file\n", readFile(t, r, "d"))
	assert.Equal(t, object.Tree{"a.txt": blobHash("master"), "d": blobHash("file\n")}, headTree(t, r))
}
