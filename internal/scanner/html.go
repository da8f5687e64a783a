package scanner

import (
	"strings"

	"golang.org/x/net/html"
)

// extractAltText tokenizes markup and maps each src/srcset path literal
// to the alt text declared on the same element. Tokenization is
// tolerant of the non-HTML preamble in component files, so a failed
// parse just yields fewer alt associations, never an error.
func extractAltText(content string) map[string]string {
	alts := make(map[string]string)
	z := html.NewTokenizer(strings.NewReader(content))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return alts
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}

		var alt string
		var paths []string
		for {
			key, val, more := z.TagAttr()
			switch strings.ToLower(string(key)) {
			case "alt":
				alt = string(val)
			case "src", "href", "poster":
				paths = append(paths, string(val))
			case "srcset":
				for _, cand := range strings.Split(string(val), ",") {
					if fields := strings.Fields(cand); len(fields) > 0 {
						paths = append(paths, fields[0])
					}
				}
			}
			if !more {
				break
			}
		}

		if alt == "" {
			continue
		}
		for _, p := range paths {
			if _, exists := alts[p]; !exists {
				alts[p] = alt
			}
		}
	}
}
