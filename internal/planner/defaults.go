package planner

import (
	"gopkg.in/yaml.v3"

	"github.com/statichq/assetpipe/internal/assets"
)

// defaultKeywordsYAML is the built-in categorization table. Keywords
// are matched case-insensitively as substrings of the filename, in
// category precedence order. Overridable from the config file.
const defaultKeywordsYAML = `
favicon:
  - favicon
  - apple-touch
  - retina
logo:
  - logo
  - wordmark
  - brand
icon:
  - icon
  - linkedin
  - google
  - bing
  - duckduckgo
  - yahoo
  - social
screenshot:
  - screenshot
  - capture
  - frame
  - untitled
graphic:
  - vector
  - mesh
  - gradient
  - wrapper
  - currency
  - og-image
  - illustration
  - banner
  - hero
photo:
  - photo
  - headshot
  - portrait
  - avatar
  - profile
stylesheet:
  - stylesheet
  - normalize
  - webflow.css
script:
  - webflow.js
  - analytics
other: []
`

// defaultKeywords parses the built-in table. The literal is a compile
// time constant so a parse failure is unreachable in practice; it
// panics rather than silently planning with an empty table.
func defaultKeywords() map[assets.Category][]string {
	var raw map[string][]string
	if err := yaml.Unmarshal([]byte(defaultKeywordsYAML), &raw); err != nil {
		panic("planner: invalid built-in keyword table: " + err.Error())
	}
	out := make(map[assets.Category][]string, len(raw))
	for name, words := range raw {
		out[assets.Category(name)] = words
	}
	return out
}
