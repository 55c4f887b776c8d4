// Package report serialises a RenamePlan for humans and for later re-import.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/On-Jun9/NamePipe/internal/filelock"
	"github.com/On-Jun9/NamePipe/pkg/types"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var formats = []Format{FormatJSON, FormatCSV, FormatText, FormatMarkdown, FormatHTML}

// UnsupportedFormatError is fatal to an export. It is returned before any
// output is written.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return fmt.Sprintf("unsupported export format %q (want one of %s)", e.Format, strings.Join(names, ", "))
}

// ParseFormat validates s. Matching is case-insensitive; "md" and "txt" are
// accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "txt":
		return FormatText, nil
	}
	return "", &UnsupportedFormatError{Format: s}
}

// Export writes plan to w in the named format.
func Export(plan *types.RenamePlan, format string, w io.Writer) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}

	switch f {
	case FormatJSON:
		return writeJSON(plan, w)
	case FormatCSV:
		return writeCSV(plan, w)
	case FormatText:
		return writeText(plan, w)
	case FormatMarkdown:
		return writeMarkdown(plan, w)
	default:
		return writeHTML(plan, w)
	}
}

// Save exports plan to path while holding the path's file lock. The file is
// replaced atomically.
func Save(ctx context.Context, path string, plan *types.RenamePlan, format string) error {
	var buf bytes.Buffer
	if err := Export(plan, format, &buf); err != nil {
		return err
	}
	if err := filelock.Write(ctx, path, buf.Bytes()); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// Load reads a plan previously saved as JSON.
func Load(path string) (*types.RenamePlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}

	plan := &types.RenamePlan{}
	if err := json.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return plan, nil
}

func writeJSON(plan *types.RenamePlan, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

var csvHeader = []string{"oldName", "newName", "oldPath", "newPath"}

// writeCSV quotes every field, unlike encoding/csv which only quotes when needed.
func writeCSV(plan *types.RenamePlan, w io.Writer) error {
	if _, err := io.WriteString(w, csvLine(csvHeader)); err != nil {
		return err
	}
	for _, r := range plan.Renames {
		if _, err := io.WriteString(w, csvLine([]string{r.OldName, r.NewName, r.OldPath, r.NewPath})); err != nil {
			return err
		}
	}
	return nil
}

func csvLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",") + "\n"
}

func writeText(plan *types.RenamePlan, w io.Writer) error {
	var b strings.Builder
	b.WriteString("Rename Plan\n")
	b.WriteString("===========\n")
	fmt.Fprintf(&b, "Files:   %d\n", plan.OriginalCount)
	fmt.Fprintf(&b, "Renamed: %d\n", plan.RenamedCount)
	fmt.Fprintf(&b, "Skipped: %d\n", plan.SkippedCount)
	fmt.Fprintf(&b, "Errors:  %d\n", plan.ErrorCount)

	if len(plan.Renames) > 0 {
		b.WriteString("\nRenames:\n")
		for _, r := range plan.Renames {
			fmt.Fprintf(&b, "  %s -> %s\n", r.OldName, r.NewName)
		}
	}
	if len(plan.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range plan.Errors {
			fmt.Fprintf(&b, "  %s: %s\n", e.File, e.Message)
		}
	}
	if len(plan.Diagnostics) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, d := range plan.Diagnostics {
			fmt.Fprintf(&b, "  %s %q: %s\n", d.Kind, d.Pattern, d.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func markdown(plan *types.RenamePlan) string {
	var b strings.Builder
	b.WriteString("# Rename Plan\n\n")
	fmt.Fprintf(&b, "- Files: %d\n- Renamed: %d\n- Skipped: %d\n- Errors: %d\n",
		plan.OriginalCount, plan.RenamedCount, plan.SkippedCount, plan.ErrorCount)

	if len(plan.Renames) > 0 {
		b.WriteString("\n## Renames\n\n| Old name | New name | Path |\n|---|---|---|\n")
		for _, r := range plan.Renames {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCell(r.OldName), mdCell(r.NewName), mdCell(r.OldPath))
		}
	}
	if len(plan.Errors) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, e := range plan.Errors {
			fmt.Fprintf(&b, "- `%s`: %s\n", e.File, e.Message)
		}
	}
	if len(plan.Diagnostics) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, d := range plan.Diagnostics {
			fmt.Fprintf(&b, "- %s `%s`: %s\n", d.Kind, d.Pattern, d.Message)
		}
	}
	return b.String()
}

func mdCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeMarkdown(plan *types.RenamePlan, w io.Writer) error {
	_, err := io.WriteString(w, markdown(plan))
	return err
}

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

func writeHTML(plan *types.RenamePlan, w io.Writer) error {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown(plan)), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Rename Plan</title></head><body>\n"); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body></html>\n")
	return err
}
