package mdstream

// SanitizerConfig is the allow-list a Sanitizer is built from.
type SanitizerConfig struct {
	// AllowedTags are elements allowed in addition to the markdown defaults.
	AllowedTags []string
	// AllowedAttrs are attributes allowed globally in addition to the
	// defaults.
	AllowedAttrs []string
	// URLSchemes replaces the default http, https and mailto schemes.
	URLSchemes []string
	// AllowComments keeps HTML comments.
	AllowComments bool
	// StripContentTags are elements removed together with their content.
	StripContentTags []string
}

// Sanitizer cleans an HTML string against an allow-list.
// Implementations must be safe for concurrent use.
type Sanitizer interface {
	Sanitize(html string) string
}
