// Package frontmatter splits "+++" delimited TOML details from Markdown
// sources and loads directory sidecar files.
package frontmatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	fmparser "github.com/adrg/frontmatter"
)

// Delimiter opens and closes a details block.
const Delimiter = "+++"

var tomlFormat = fmparser.NewFormat(Delimiter, Delimiter, toml.Unmarshal)

// DetailsError reports a details block or sidecar that could not be decoded
// into a key-value table.
type DetailsError struct {
	Path string
	Err  error
}

func (e *DetailsError) Error() string {
	return fmt.Sprintf("invalid page details in %s: %v", e.Path, e.Err)
}

func (e *DetailsError) Unwrap() error { return e.Err }

// Parse separates an optional leading "+++" TOML block from the body.
// Leading blank lines before the opening delimiter are ignored. A document
// whose block is never closed is returned whole as body with no details.
// path is only used for error reporting.
func Parse(path string, source []byte) (body []byte, details map[string]any, err error) {
	details = map[string]any{}
	body, err = fmparser.Parse(bytes.NewReader(source), &details, tomlFormat)
	if err != nil {
		return nil, nil, &DetailsError{Path: path, Err: err}
	}
	if details == nil {
		details = map[string]any{}
	}
	return body, details, nil
}

// ParseDetails decodes a standalone TOML document, as used by sidecars.
func ParseDetails(path string, data []byte) (map[string]any, error) {
	details := map[string]any{}
	if err := toml.Unmarshal(data, &details); err != nil {
		return nil, &DetailsError{Path: path, Err: err}
	}
	if details == nil {
		details = map[string]any{}
	}
	return details, nil
}

// LoadDetailsFile reads and decodes a sidecar file. found is false when the
// file does not exist.
func LoadDetailsFile(path string) (details map[string]any, found bool, err error) {
	data, err := os.ReadFile(path) // #nosec G304 -- sidecar paths come from the content tree
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read sidecar %s: %w", path, err)
	}
	details, err = ParseDetails(path, data)
	if err != nil {
		return nil, true, err
	}
	return details, true, nil
}
