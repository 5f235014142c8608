// Package report renders check results for terminals, scripts and code
// scanning tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"layerguard/internal/core/app"
	"layerguard/internal/core/errors"
)

type Format string

const (
	FormatText   Format = "text"
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
	FormatSARIF  Format = "sarif"
)

var Formats = []Format{FormatText, FormatPretty, FormatJSON, FormatSARIF}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.CodeValidationError, fmt.Sprintf("unknown output format %q (use text, pretty, json or sarif)", s))
}

// Render writes the report in the requested format.
func Render(w io.Writer, format Format, r app.Report) error {
	switch format {
	case FormatText, "":
		return WriteText(w, r)
	case FormatPretty:
		_, err := io.WriteString(w, Pretty(r))
		return err
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatSARIF:
		data, err := GenerateSARIF(r)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
	return errors.New(errors.CodeValidationError, fmt.Sprintf("unknown output format %q", format))
}

func WriteJSON(w io.Writer, r app.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText prints one `file:line:column - message (ruleId)` line per
// violation followed by a summary line.
func WriteText(w io.Writer, r app.Report) error {
	var b strings.Builder
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "%s:%d:%d - %s (%s)\n", v.File, v.Line, v.Column, v.Message, v.RuleID)
	}
	b.WriteString(Summary(r))
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// Summary is the one-line verdict shared by every human-readable format.
func Summary(r app.Report) string {
	if r.Passed {
		return fmt.Sprintf("No architecture violations found (%s analyzed).", plural(r.FilesAnalyzed, "file"))
	}
	return fmt.Sprintf("Found %s in %s (%s analyzed).",
		plural(len(r.Violations), "violation"),
		plural(len(filesWithViolations(r)), "file"),
		plural(r.FilesAnalyzed, "file"))
}

func filesWithViolations(r app.Report) []string {
	var files []string
	for _, v := range r.Violations {
		if len(files) == 0 || files[len(files)-1] != v.File {
			files = append(files, v.File)
		}
	}
	return files
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
