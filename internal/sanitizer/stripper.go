package sanitizer

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLStripperer strips markup from free text before it is stored.
type HTMLStripperer interface {
	StripHTML(s string) string
}

type HTMLStripper struct {
	bm *bluemonday.Policy
}

// NewHTMLStripper return a new instance of blue monday policy
func NewHTMLStripper() *HTMLStripper {
	return &HTMLStripper{
		bm: bluemonday.StrictPolicy(),
	}
}

// StripHTML removes all markup and collapses whitespace.
func (hs *HTMLStripper) StripHTML(s string) string {
	return strings.Join(strings.Fields(hs.bm.Sanitize(s)), " ")
}
