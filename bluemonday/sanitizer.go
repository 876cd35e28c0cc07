// Package bluemonday implements mdstream.Sanitizer over a bluemonday
// allow-list policy.
package bluemonday

import (
	"regexp"

	"github.com/fwojciec/mdstream"
	"github.com/microcosm-cc/bluemonday"
)

// Interface compliance check.
var _ mdstream.Sanitizer = (*Sanitizer)(nil)

// markdownElements are the elements the goldmark compiler emits.
var markdownElements = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	"p", "br", "hr", "blockquote", "div", "span",
	"pre", "code", "em", "strong", "del",
	"a", "img", "input",
	"ul", "ol", "li",
	"table", "thead", "tbody", "tr", "th", "td",
}

// defaultURLSchemes apply when the config names none.
var defaultURLSchemes = []string{"http", "https", "mailto"}

var (
	checkboxRe  = regexp.MustCompile(`^checkbox$`)
	cellAlignRe = regexp.MustCompile(`^(left|center|right)$`)
	cellStyleRe = regexp.MustCompile(`^text-align:\s*(left|center|right);?$`)
)

// Sanitizer cleans HTML with a policy built once from a
// mdstream.SanitizerConfig. It is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New creates a new [Sanitizer].
func New(cfg mdstream.SanitizerConfig) *Sanitizer {
	return &Sanitizer{policy: NewPolicy(cfg)}
}

// Sanitize returns html with everything outside the allow-list removed.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}

// NewPolicy builds the bluemonday policy for cfg.
func NewPolicy(cfg mdstream.SanitizerConfig) *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(markdownElements...)
	p.AllowLists()
	p.AllowTables()
	// Not AllowImages: it also allows the standard URL schemes and forces
	// rel="nofollow" onto every link.
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("title").Globally()
	p.AllowAttrs("class", "classname").Globally()
	p.AllowDataAttributes()
	p.AllowAttrs("type").Matching(checkboxRe).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	p.AllowAttrs("align").Matching(cellAlignRe).OnElements("th", "td")
	p.AllowAttrs("style").Matching(cellStyleRe).OnElements("th", "td")

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	schemes := cfg.URLSchemes
	if len(schemes) == 0 {
		schemes = defaultURLSchemes
	}
	p.AllowURLSchemes(schemes...)

	if len(cfg.AllowedTags) > 0 {
		p.AllowElements(cfg.AllowedTags...)
		// Custom elements usually carry no attributes while they stream.
		p.AllowNoAttrs().OnElements(cfg.AllowedTags...)
	}
	if len(cfg.AllowedAttrs) > 0 {
		p.AllowAttrs(cfg.AllowedAttrs...).Globally()
	}
	if cfg.AllowComments {
		p.AllowComments()
	}
	if len(cfg.StripContentTags) > 0 {
		p.SkipElementsContent(cfg.StripContentTags...)
	}

	// rel is the compiler's to set.
	p.RequireNoFollowOnLinks(false)
	return p
}
