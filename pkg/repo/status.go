package repo

import (
	"fmt"
	"sort"
)

// ChangeKind describes an unstaged change to a tracked file.
type ChangeKind string

const (
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
)

// UnstagedChange is a tracked or staged path whose working copy differs from
// what would be committed.
type UnstagedChange struct {
	Path string
	Kind ChangeKind
}

// StatusReport is the structured state of the repository. Every list is
// sorted.
type StatusReport struct {
	Current   string
	Branches  []string
	Staged    []string // staged for addition
	Removed   []string // staged for removal
	Unstaged  []UnstagedChange
	Untracked []string
}

// Status compares the working directory with the current commit and the
// staging area.
//
// A path is reported as unstaged when it is tracked and changed but not
// staged, staged with content that differs from the working copy, staged
// but deleted, or tracked and deleted without being staged for removal.
// Untracked paths are working files that are neither staged for addition nor
// tracked, including files staged for removal that exist again.
func (r *Repo) Status() (*StatusReport, error) {
	current, _, head, err := r.headCommitObj()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	branches, err := r.ListBranches()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	files, err := r.workingFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	rep := &StatusReport{
		Current:  current,
		Branches: branches,
		Staged:   stg.Added().Paths(),
		Removed:  stg.Removed(),
	}

	working := make(map[string]bool, len(files))
	for _, f := range files {
		working[f] = true
	}

	// Paths whose expected content is known: staged additions win over the
	// committed tree; staged removals expect nothing.
	expected := stg.apply(head.Tree)
	for _, p := range expected.Paths() {
		if !working[p] {
			rep.Unstaged = append(rep.Unstaged, UnstagedChange{Path: p, Kind: ChangeDeleted})
			continue
		}
		got, _, err := r.workingDigest(p)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		if got != expected[p] {
			rep.Unstaged = append(rep.Unstaged, UnstagedChange{Path: p, Kind: ChangeModified})
		}
	}

	for _, f := range files {
		if _, ok := expected[f]; !ok {
			rep.Untracked = append(rep.Untracked, f)
		}
	}

	sort.Slice(rep.Unstaged, func(i, j int) bool { return rep.Unstaged[i].Path < rep.Unstaged[j].Path })
	return rep, nil
}
