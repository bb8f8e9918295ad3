// Package publish commits the build directory to the git repository it is
// the worktree of, and pushes it.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/yassg/internal/logfields"
)

// StateDir is the build-local state directory, never committed.
const StateDir = ".yassg"

// DefaultRemote is pushed to when no remote is named.
const DefaultRemote = "origin"

// Signature identifies the commit author.
type Signature struct {
	Name  string
	Email string
}

// DefaultSignature is used when no author is configured.
var DefaultSignature = Signature{Name: "yassg", Email: "yassg@localhost"}

// Result describes a commit attempt.
type Result struct {
	// Committed is false when the worktree had nothing to commit.
	Committed bool
	Hash      string
}

// Commit stages every change in the worktree rooted at dir and commits it.
// A clean worktree is not an error: Result.Committed is false.
func Commit(dir, message string, author Signature) (Result, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return Result{}, fmt.Errorf("open repository %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Result{}, fmt.Errorf("worktree: %w", err)
	}
	wt.Excludes = append(wt.Excludes, gitignore.ParsePattern(StateDir, nil))

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return Result{}, fmt.Errorf("stage changes: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return Result{}, fmt.Errorf("status: %w", err)
	}
	if status.IsClean() {
		slog.Info("Nothing to commit", logfields.Path(dir))
		return Result{}, nil
	}

	if author.Name == "" {
		author = DefaultSignature
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: author.Name, Email: author.Email, When: time.Now()},
	})
	if err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}
	slog.Info("Committed build", logfields.Path(dir), slog.String("commit", hash.String()[:8]))
	return Result{Committed: true, Hash: hash.String()}, nil
}

// Push pushes branch (the checked-out branch when empty) to remote.
// An up-to-date remote is not an error.
func Push(ctx context.Context, dir, remote, branch string, auth Auth) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open repository %s: %w", dir, err)
	}
	if remote == "" {
		remote = DefaultRemote
	}
	if branch == "" {
		head, err := repo.Head()
		if err != nil {
			return fmt.Errorf("resolve HEAD: %w", err)
		}
		if !head.Name().IsBranch() {
			return fmt.Errorf("HEAD is detached; name a branch to push")
		}
		branch = head.Name().Short()
	}
	method, err := auth.Method()
	if err != nil {
		return err
	}

	ref := plumbing.NewBranchReferenceName(branch)
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref.String() + ":" + ref.String())},
		Auth:       method,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		slog.Info("Remote already up to date", slog.String("remote", remote), slog.String("branch", branch))
		return nil
	}
	if err != nil {
		return fmt.Errorf("push %s to %s: %w", branch, remote, err)
	}
	slog.Info("Pushed build", slog.String("remote", remote), slog.String("branch", branch))
	return nil
}
