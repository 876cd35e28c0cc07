package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
)

// defaultAttrs are always allowed so new-tab links survive sanitizing.
var defaultAttrs = []string{"target", "rel"}

// MergeSanitizerConfig returns cfg with the registered component names added
// to AllowedTags and target and rel added to AllowedAttrs, both lower-cased
// and deduplicated. The remaining fields pass through unchanged.
func MergeSanitizerConfig(components mdstream.Components, cfg mdstream.SanitizerConfig) mdstream.SanitizerConfig {
	merged := cfg
	merged.AllowedTags = dedupe(append(components.Names(), cfg.AllowedTags...))
	merged.AllowedAttrs = dedupe(append(append([]string(nil), defaultAttrs...), cfg.AllowedAttrs...))
	return merged
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
