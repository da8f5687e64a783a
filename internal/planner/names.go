package planner

import (
	"regexp"
	"sort"
	"strings"

	"github.com/statichq/assetpipe/internal/assets"
)

var (
	hexPrefixRe   = regexp.MustCompile(`^[0-9a-fA-F]{16,32}_`)
	uuidRe        = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	untitledRe    = regexp.MustCompile(`(?i)untitled\s*(\(\d+\)|\d+)?`)
	copyMarkerRe  = regexp.MustCompile(`\s*\(\d+\)`)
	sizeVariantRe = regexp.MustCompile(`-p-\d+`)
	invalidRe     = regexp.MustCompile(`[^a-z0-9.-]+`)
	dashRunRe     = regexp.MustCompile(`-{2,}`)
)

// cleanName strips exporter noise from a filename stem and normalizes
// it to lowercase hyphen-case. Returns "" when nothing descriptive
// survives cleaning.
func cleanName(stem string) string {
	s := hexPrefixRe.ReplaceAllString(stem, "")
	s = uuidRe.ReplaceAllString(s, "")
	s = untitledRe.ReplaceAllString(s, "")
	s = copyMarkerRe.ReplaceAllString(s, "")
	s = sizeVariantRe.ReplaceAllString(s, "")

	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = invalidRe.ReplaceAllString(s, "")
	s = dashRunRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	return s
}

// trivialAltWords are alt texts that describe nothing.
var trivialAltWords = map[string]bool{
	"image": true, "img": true, "photo": true, "picture": true,
	"icon": true, "logo": true, "graphic": true, "asset": true,
}

// contextKeywords are scanned, in order, against the surrounding
// source text when neither the filename nor the alt text yields a name.
var contextKeywords = []string{
	"logo", "favicon", "avatar", "headshot", "portrait", "screenshot",
	"background", "banner", "hero", "linkedin", "twitter", "github",
	"resume", "profile", "chart", "diagram", "thumbnail",
}

// nameFromReferences derives a name from how the asset is used: alt
// text first, then recognizable words near the reference. Returns ""
// when the references carry no usable signal.
func nameFromReferences(refs []assets.Reference) string {
	for _, ref := range refs {
		if name := cleanName(ref.Alt); name != "" && !trivialAltWords[name] {
			return name
		}
	}

	counts := make(map[string]int)
	for _, ref := range refs {
		lower := strings.ToLower(ref.Context)
		for _, kw := range contextKeywords {
			if strings.Contains(lower, kw) {
				counts[kw]++
			}
		}
	}
	if len(counts) == 0 {
		return ""
	}
	best := ""
	for _, kw := range contextKeywords {
		if counts[kw] > 0 && (best == "" || counts[kw] > counts[best]) {
			best = kw
		}
	}
	return best
}

// sortedKeywords returns the keyword table keys in category order,
// used only by tests and diagnostics.
func sortedKeywords(kw map[assets.Category][]string) []string {
	var out []string
	for c := range kw {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}
