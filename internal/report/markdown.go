package report

import (
	"fmt"

	"github.com/aymerick/raymond"

	"github.com/statichq/assetpipe/internal/applier"
	"github.com/statichq/assetpipe/internal/mapping"
)

// markdownTemplate is the migration report. Handlebars keeps the
// document structure readable next to the rendering code.
const markdownTemplate = `# Asset migration report

Run ` + "`{{run_id}}`" + ` ({{mode}}), started {{started_at}}.

## Renames

| Category | Old path | New path |
|----------|----------|----------|
{{#each entries}}| {{category}} | ` + "`{{old}}`" + ` | ` + "`{{new}}`" + ` |
{{/each}}

## Outcome

- Moved: {{moved}}
- Already correct: {{already_correct}}
- Skipped (identical at destination): {{skipped}}
- Files rewritten: {{files_rewritten}}
- References rewritten: {{refs_rewritten}}
{{#if pruned}}- Pruned empty directories: {{pruned}}
{{/if}}
{{#if errors}}
## Errors

{{#each errors}}- **{{kind}}** ({{stage}}) ` + "`{{item}}`" + `: {{message}}
{{/each}}{{else}}No errors.
{{/if}}`

// Markdown renders the full migration report for a mapping and the
// apply run that executed it.
func Markdown(doc *mapping.Document, s *applier.Summary) (string, error) {
	entries := make([]map[string]interface{}, 0, len(doc.Entries))
	for _, e := range sortedEntries(doc) {
		entries = append(entries, map[string]interface{}{
			"category": titler.String(e.Category),
			"old":      e.OldPath,
			"new":      e.NewPath,
		})
	}

	errs := make([]map[string]interface{}, 0, len(s.Errors))
	for _, e := range s.Errors {
		errs = append(errs, map[string]interface{}{
			"kind":    e.Kind,
			"stage":   e.Stage,
			"item":    e.Item,
			"message": e.Message,
		})
	}

	ctx := map[string]interface{}{
		"run_id":          s.RunID,
		"mode":            s.Mode,
		"started_at":      s.StartedAt.Format("2006-01-02 15:04:05 MST"),
		"entries":         entries,
		"moved":           s.Moved,
		"already_correct": s.AlreadyCorrect,
		"skipped":         s.Skipped,
		"files_rewritten": s.FilesRewritten,
		"refs_rewritten":  s.RefsRewritten,
		"pruned":          len(s.PrunedDirs),
		"errors":          errs,
	}

	out, err := raymond.Render(markdownTemplate, ctx)
	if err != nil {
		return "", fmt.Errorf("rendering migration report: %w", err)
	}
	return out, nil
}
