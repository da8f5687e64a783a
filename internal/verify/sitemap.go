package verify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

// checkSitemap cross-checks sitemap <loc> entries against the
// discovered routes, both directions: stale sitemap entries that no
// page serves, and routes the sitemap forgot.
func (v *Verifier) checkSitemap(routes map[string]bool, report *Report) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(v.cfg.SitemapPath); err != nil {
		return fmt.Errorf("reading sitemap %s: %w", v.cfg.SitemapPath, err)
	}

	listed := make(map[string]bool)
	for _, loc := range doc.FindElements("//loc") {
		raw := strings.TrimSpace(loc.Text())
		u, err := url.Parse(raw)
		if err != nil {
			report.Issues = append(report.Issues, Issue{
				Kind: KindSitemapStale, Path: raw, Detail: "unparsable loc entry",
			})
			continue
		}
		route := normalizeRoute(u.Path)
		listed[route] = true
		if routes[route] || v.underDynamicSegment(route+"/") {
			continue
		}
		report.Issues = append(report.Issues, Issue{
			Kind: KindSitemapStale, Path: raw, Detail: "no page defines this route",
		})
	}

	for _, route := range sortedRoutes(routes) {
		if !listed[route] {
			report.Issues = append(report.Issues, Issue{
				Kind: KindSitemapGap, Path: route, Detail: "route missing from sitemap",
			})
		}
	}
	return nil
}
