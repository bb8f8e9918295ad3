// Package fingerprint computes stable content fingerprints for pages so a
// build can tell which sources changed since the previous one.
package fingerprint

import (
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/yassg/internal/frontmatter"
	"git.home.luguber.info/inful/yassg/internal/page"
)

// Compute fingerprints page details and body. Details are serialized as
// sorted-key YAML, so map insertion order does not matter. A stored
// fingerprint field in details is ignored.
func Compute(details map[string]any, body string) (string, error) {
	fields := make(map[string]any, len(details))
	for k, v := range details {
		if k == mdfp.FingerprintField {
			continue
		}
		fields[k] = v
	}

	serialized := ""
	if len(fields) > 0 {
		data, err := frontmatter.SerializeDetails(fields)
		if err != nil {
			return "", err
		}
		serialized = trimSingleTrailingNewline(string(data))
	}
	return mdfp.CalculateFingerprintFromParts(serialized, body), nil
}

// Page fingerprints p. Folder pages hash their details with an empty body.
func Page(p *page.Page) (string, error) {
	return Compute(p.Details, p.Content())
}

func trimSingleTrailingNewline(s string) string {
	if before, ok := strings.CutSuffix(s, "\r\n"); ok {
		return before
	}
	if before, ok := strings.CutSuffix(s, "\n"); ok {
		return before
	}
	return s
}
