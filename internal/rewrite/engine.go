// Package rewrite implements the shared, table-driven reference rewrite
// engine. Every stage that touches reference literals (scanning,
// applying, verifying, conversion reference updates) goes through the
// same rule table, so path recognition is defined in exactly one place.
package rewrite

import (
	"regexp"
	"strings"

	"github.com/statichq/assetpipe/internal/assets"
)

// PathFunc maps a matched path literal to its replacement. Returning
// ok=false leaves the literal untouched.
type PathFunc func(path string) (string, bool)

// Change records one applied substitution.
type Change struct {
	Rule string `json:"rule"`
	Old  string `json:"old"`
	New  string `json:"new"`
	Line int    `json:"line"`
}

// Match records one recognized path literal during extraction.
type Match struct {
	Rule string
	Attr string
	Path string
	Line int
	// Start is the byte offset of the path literal in the content.
	Start int
}

type rule struct {
	name string
	// attr holds the attribute-name capture index, 0 when the rule has
	// a fixed attribute.
	re        *regexp.Regexp
	attrGroup int
	pathGroup int
	srcset    bool
}

// Engine applies the rule table to text content.
type Engine struct {
	rules []rule
}

// NewEngine builds the engine with the consolidated rule table: quoted
// href/src/poster/ogImage attributes, srcset lists, and CSS url()
// expressions, with single or double quotes.
func NewEngine() *Engine {
	return &Engine{rules: []rule{
		{
			name:      "attr",
			re:        regexp.MustCompile(`(?i)(href|src|poster|ogImage)=(["'])([^"']+)(["'])`),
			attrGroup: 1,
			pathGroup: 3,
		},
		{
			name:      "srcset",
			re:        regexp.MustCompile(`(?i)srcset=(["'])([^"']+)(["'])`),
			pathGroup: 2,
			srcset:    true,
		},
		{
			name:      "cssurl",
			re:        regexp.MustCompile(`url\(\s*(["']?)([^"')]+)(["']?)\s*\)`),
			pathGroup: 2,
		},
	}}
}

// Rewrite applies fn to every recognized path literal and returns the
// updated content plus the list of changes. External links are never
// passed to fn. Only the path substring is replaced; quoting and
// surrounding syntax are preserved byte for byte.
func (e *Engine) Rewrite(content string, fn PathFunc) (string, []Change) {
	var changes []Change

	for _, r := range e.rules {
		var b strings.Builder
		last := 0
		for _, idx := range r.re.FindAllStringSubmatchIndex(content, -1) {
			start, end := idx[2*r.pathGroup], idx[2*r.pathGroup+1]
			if start < 0 {
				continue
			}
			old := content[start:end]

			var updated string
			var ok bool
			if r.srcset {
				updated, ok = rewriteSrcset(old, fn)
			} else {
				updated, ok = rewriteSingle(old, fn)
			}
			if !ok || updated == old {
				continue
			}

			b.WriteString(content[last:start])
			b.WriteString(updated)
			last = end
			changes = append(changes, Change{
				Rule: r.name,
				Old:  old,
				New:  updated,
				Line: lineAt(content, start),
			})
		}
		if last > 0 {
			b.WriteString(content[last:])
			content = b.String()
		}
	}

	return content, changes
}

// Extract reports every recognized path literal without modifying
// anything. External links are included so callers can audit them, and
// flagged via assets.IsExternal on their side when needed.
func (e *Engine) Extract(content string) []Match {
	var matches []Match

	for _, r := range e.rules {
		for _, idx := range r.re.FindAllStringSubmatchIndex(content, -1) {
			start, end := idx[2*r.pathGroup], idx[2*r.pathGroup+1]
			if start < 0 {
				continue
			}
			attr := r.name
			if r.attrGroup > 0 {
				attr = strings.ToLower(content[idx[2*r.attrGroup]:idx[2*r.attrGroup+1]])
			}
			value := content[start:end]

			if r.srcset {
				for _, cand := range splitSrcset(value) {
					matches = append(matches, Match{
						Rule:  r.name,
						Attr:  "srcset",
						Path:  cand.path,
						Line:  lineAt(content, start+cand.offset),
						Start: start + cand.offset,
					})
				}
				continue
			}

			matches = append(matches, Match{
				Rule:  r.name,
				Attr:  attr,
				Path:  value,
				Line:  lineAt(content, start),
				Start: start,
			})
		}
	}

	return matches
}

// rewriteSingle maps one path literal, shielding external links.
func rewriteSingle(path string, fn PathFunc) (string, bool) {
	if assets.IsExternal(path) {
		return path, false
	}
	return fn(path)
}

type srcsetCandidate struct {
	path   string
	offset int
}

// splitSrcset parses a srcset value into path candidates with their
// byte offsets inside the value. Each comma-separated entry is a path
// optionally followed by a width/density descriptor.
func splitSrcset(value string) []srcsetCandidate {
	var out []srcsetCandidate
	offset := 0
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimLeft(part, " \t\n")
		lead := len(part) - len(trimmed)
		fields := strings.Fields(trimmed)
		if len(fields) > 0 {
			out = append(out, srcsetCandidate{
				path:   fields[0],
				offset: offset + lead,
			})
		}
		offset += len(part) + 1
	}
	return out
}

// rewriteSrcset rewrites each path inside a srcset value, preserving
// descriptors and separators.
func rewriteSrcset(value string, fn PathFunc) (string, bool) {
	parts := strings.Split(value, ",")
	changed := false
	for i, part := range parts {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		path := fields[0]
		if assets.IsExternal(path) {
			continue
		}
		if updated, ok := fn(path); ok && updated != path {
			parts[i] = strings.Replace(part, path, updated, 1)
			changed = true
		}
	}
	if !changed {
		return value, false
	}
	return strings.Join(parts, ","), true
}

// lineAt returns the 1-based line number of a byte offset.
func lineAt(content string, offset int) int {
	return 1 + strings.Count(content[:offset], "\n")
}
