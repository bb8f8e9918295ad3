package site

import (
	"context"
	stderrors "errors"
	htmltemplate "html/template"
	"io/fs"
	texttemplate "text/template"

	"git.home.luguber.info/inful/yassg/internal/config"
	"git.home.luguber.info/inful/yassg/internal/errors"
	"git.home.luguber.info/inful/yassg/internal/frontmatter"
	"git.home.luguber.info/inful/yassg/internal/page"
	"git.home.luguber.info/inful/yassg/internal/shortcode"
	"git.home.luguber.info/inful/yassg/internal/theme"
)

// Category maps a domain error onto an error category. Errors that carry no
// recognizable type get fallback.
func Category(err error, fallback errors.ErrorCategory) errors.ErrorCategory {
	if ce, ok := errors.As(err); ok {
		return ce.Category
	}

	var (
		detailsErr   *frontmatter.DetailsError
		structureErr *page.StructureError
		callErr      *shortcode.CallError
		valueErr     *config.ValueError
		execErr      texttemplate.ExecError
		escapeErr    *htmltemplate.Error
		pathErr      *fs.PathError
	)
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return errors.CategoryRuntime
	case stderrors.As(err, &detailsErr):
		return errors.CategoryMetadata
	case stderrors.As(err, &structureErr):
		return errors.CategoryTree
	case stderrors.As(err, &callErr):
		return errors.CategoryShortcode
	case stderrors.Is(err, config.ErrNotFound), stderrors.As(err, &valueErr):
		return errors.CategoryConfig
	case stderrors.Is(err, theme.ErrMissingTemplate), stderrors.Is(err, theme.ErrUnknownExtension),
		stderrors.As(err, &execErr), stderrors.As(err, &escapeErr):
		return errors.CategoryTemplate
	case stderrors.As(err, &pathErr):
		return errors.CategoryFileSystem
	}
	return fallback
}

// Classify wraps err as a fatal failure of stage. Already classified errors
// are returned unchanged.
func Classify(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.StageFailed(string(stage), Category(err, stage.fallback()), err)
}
