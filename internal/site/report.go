package site

import (
	"fmt"
	"io"
	"time"

	"git.home.luguber.info/inful/yassg/internal/errors"
	"git.home.luguber.info/inful/yassg/internal/linkcheck"
	"git.home.luguber.info/inful/yassg/internal/mirror"
	"git.home.luguber.info/inful/yassg/internal/publish"
	"git.home.luguber.info/inful/yassg/internal/render"
)

// Stage names a step of the build.
type Stage string

const (
	StageTheme      Stage = "theme"
	StageTree       Stage = "tree"
	StageState      Stage = "state"
	StageExtensions Stage = "extensions"
	StageRender     Stage = "render"
	StageLinkCheck  Stage = "link_check"
	StagePublish    Stage = "publish"
)

// fallback is the category of stage errors that carry no domain type.
func (s Stage) fallback() errors.ErrorCategory {
	switch s {
	case StageTheme, StageExtensions:
		return errors.CategoryTemplate
	case StageTree, StageState, StageRender:
		return errors.CategoryFileSystem
	case StageLinkCheck:
		return errors.CategoryValidation
	case StagePublish:
		return errors.CategoryPublish
	default:
		return errors.CategoryInternal
	}
}

// Status is the final state of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// StageTiming records how one stage went.
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
	Result   string
}

// Report describes a finished (or failed) build.
type Report struct {
	BuildID   string
	Status    Status
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stages    []StageTiming

	Pages     int
	Written   int
	Unchanged int
	Folders   int
	// Changed lists pages whose source changed since the previous build.
	Changed []string
	// Removed lists outputs of pages that no longer exist.
	Removed []string
	Static  mirror.Stats

	Links  *linkcheck.Report
	Commit publish.Result
	Pushed bool
}

func (r *Report) addRender(s render.Stats) {
	r.Pages = s.Pages()
	r.Written = s.Written
	r.Unchanged = s.Unchanged
	r.Folders = s.Folders
	r.Changed = s.Changed
	r.Removed = s.Removed
	r.Static = s.Static
}

// Summary writes a short human readable summary.
func (r *Report) Summary(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("Build %s: %s in %s", r.BuildID, r.Status, r.Duration.Round(time.Millisecond)),
		fmt.Sprintf("  pages: %d (%d written, %d unchanged), folders: %d", r.Pages, r.Written, r.Unchanged, r.Folders),
		fmt.Sprintf("  changed since last build: %d, removed: %d", len(r.Changed), len(r.Removed)),
		fmt.Sprintf("  static files: %d copied, %d skipped", r.Static.Copied, r.Static.Skipped),
	}
	if r.Links != nil {
		lines = append(lines, fmt.Sprintf("  links: %d checked in %d files, %d broken", r.Links.Links, r.Links.Files, len(r.Links.Broken)))
	}
	if r.Commit.Committed {
		lines = append(lines, fmt.Sprintf("  committed %s", r.Commit.Hash))
	}
	if r.Pushed {
		lines = append(lines, "  pushed")
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
