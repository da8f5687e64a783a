// Package report renders run results for humans: aligned console
// tables and a Markdown migration report suitable for attaching to a
// change request.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/statichq/assetpipe/internal/applier"
	"github.com/statichq/assetpipe/internal/assets"
	"github.com/statichq/assetpipe/internal/mapping"
)

var titler = cases.Title(language.English)

// CategoryTable renders the per-category entry counts of a mapping as
// an aligned two-column table.
func CategoryTable(doc *mapping.Document) string {
	counts := doc.CategoryCounts()
	rows := make([][2]string, 0, len(counts))
	for _, category := range assets.Categories {
		if n := counts[string(category)]; n > 0 {
			rows = append(rows, [2]string{titler.String(string(category)), fmt.Sprint(n)})
		}
	}
	rows = append(rows, [2]string{"Total", fmt.Sprint(len(doc.Entries))})
	return renderTable([2]string{"Category", "Assets"}, rows)
}

// SummaryTable renders the outcome counts of an apply run.
func SummaryTable(s *applier.Summary) string {
	rows := [][2]string{
		{"Mode", s.Mode},
		{"Moved", fmt.Sprint(s.Moved)},
		{"Already correct", fmt.Sprint(s.AlreadyCorrect)},
		{"Skipped (identical)", fmt.Sprint(s.Skipped)},
		{"Files rewritten", fmt.Sprint(s.FilesRewritten)},
		{"References rewritten", fmt.Sprint(s.RefsRewritten)},
		{"Errors", fmt.Sprint(len(s.Errors))},
	}
	if len(s.PrunedDirs) > 0 {
		rows = append(rows, [2]string{"Pruned directories", fmt.Sprint(len(s.PrunedDirs))})
	}
	return renderTable([2]string{"Result", "Count"}, rows)
}

// renderTable aligns rows on display width, so names containing wide
// runes keep their columns straight.
func renderTable(header [2]string, rows [][2]string) string {
	width := runewidth.StringWidth(header[0])
	for _, row := range rows {
		if w := runewidth.StringWidth(row[0]); w > width {
			width = w
		}
	}

	var b strings.Builder
	writeRow := func(key, value string) {
		b.WriteString("  ")
		b.WriteString(runewidth.FillRight(key, width))
		b.WriteString("  ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	writeRow(header[0], header[1])
	writeRow(strings.Repeat("-", width), strings.Repeat("-", runewidth.StringWidth(header[1])))
	for _, row := range rows {
		writeRow(row[0], row[1])
	}
	return b.String()
}

// sortedEntries returns mapping entries grouped by category then old
// path, for stable report output.
func sortedEntries(doc *mapping.Document) []mapping.Entry {
	entries := make([]mapping.Entry, 0, len(doc.Entries))
	for _, key := range doc.SortedKeys() {
		entries = append(entries, doc.Entries[key])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].OldRelative < entries[j].OldRelative
	})
	return entries
}
