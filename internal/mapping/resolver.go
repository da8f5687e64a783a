package mapping

import (
	"net/url"
	"path"
	"strings"

	"github.com/statichq/assetpipe/internal/assets"
)

// Resolver maps a reference literal, in whatever form it was written,
// to the planned new path. Resolution tries, in priority order: exact
// URL path, filename only, asset-root-relative path.
type Resolver struct {
	prefix string
	exact  map[string]string
	byName map[string]string
	byRel  map[string]string
}

// NewResolver builds the lookup tables for a document. prefix is the
// URL prefix assets are served under, e.g. "/cdn-assets/".
func NewResolver(doc *Document, prefix string) *Resolver {
	r := &Resolver{
		prefix: "/" + strings.Trim(prefix, "/") + "/",
		exact:  make(map[string]string, len(doc.Entries)),
		byName: make(map[string]string, len(doc.Entries)),
		byRel:  make(map[string]string, len(doc.Entries)),
	}

	// Lexicographic key order makes the filename table deterministic
	// when two entries share a basename: first key wins.
	for _, key := range doc.SortedKeys() {
		e := doc.Entries[key]
		r.exact[e.OldPath] = e.NewPath
		name := path.Base(e.OldRelative)
		if _, taken := r.byName[name]; !taken {
			r.byName[name] = e.NewPath
		}
		r.byRel[e.OldRelative] = e.NewPath
	}
	return r
}

// Resolve maps a literal to its replacement. Query strings and
// fragments are preserved, percent-encoding in the original literal is
// re-applied to the replacement, and external links never resolve.
func (r *Resolver) Resolve(literal string) (string, bool) {
	if literal == "" || assets.IsExternal(literal) {
		return "", false
	}

	base, suffix := splitSuffix(literal)
	decoded := base
	if u, err := url.PathUnescape(base); err == nil {
		decoded = u
	}
	encoded := decoded != base

	newPath, ok := r.lookup(decoded)
	if !ok {
		return "", false
	}
	if newPath == base || newPath == decoded {
		// Already pointing at the new location.
		return "", false
	}
	if encoded {
		newPath = reencode(newPath)
	}
	return newPath + suffix, true
}

// lookup applies the three-tier resolution order.
func (r *Resolver) lookup(decoded string) (string, bool) {
	if n, ok := r.exact[decoded]; ok {
		return n, true
	}

	// Normalize away relative segments and missing leading slash.
	norm := decoded
	for strings.HasPrefix(norm, "../") {
		norm = norm[3:]
	}
	norm = strings.TrimPrefix(norm, "./")
	if !strings.HasPrefix(norm, "/") {
		norm = "/" + norm
	}
	if n, ok := r.exact[norm]; ok {
		return n, true
	}

	if n, ok := r.byName[path.Base(decoded)]; ok {
		return n, true
	}

	rel := strings.TrimPrefix(norm, r.prefix)
	rel = strings.TrimPrefix(rel, "/")
	if n, ok := r.byRel[rel]; ok {
		return n, true
	}

	return "", false
}

// splitSuffix separates a query string or fragment from the path part.
func splitSuffix(literal string) (string, string) {
	if i := strings.IndexAny(literal, "?#"); i >= 0 {
		return literal[:i], literal[i:]
	}
	return literal, ""
}

// reencode re-applies percent-encoding for the characters the original
// literal had encoded. New planned names are hyphen-case so this is
// normally a no-op.
func reencode(p string) string {
	replacer := strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29")
	return replacer.Replace(p)
}
