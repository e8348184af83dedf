// Package output prints command results in the format chosen with --output.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Output formats.
const (
	JSON = "json"
	Text = "text"
	CSV  = "csv"
	MD   = "md"
	None = "none"
)

// Formats lists the accepted --output values.
func Formats() []string {
	return []string{JSON, Text, CSV, MD, None}
}

// Options tune formats that have settings of their own.
type Options struct {
	// CSVHeader writes the column names as the first CSV row.
	CSVHeader bool
}

// ValidateFormat rejects unknown --output values.
func ValidateFormat(format string) error {
	for _, f := range Formats() {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("'%s' is not a valid output type. Allowed values: %s", format, strings.Join(Formats(), ", "))
}

// Write prints v to w in format. Strings are printed as they are in every
// format but none.
func Write(w io.Writer, format string, v any, opts Options) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	if format == None {
		return nil
	}
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	if format == JSON {
		return writeJSON(w, v)
	}

	val, err := normalize(v)
	if err != nil {
		return err
	}
	switch format {
	case Text:
		return writeText(w, val)
	case CSV:
		return writeCSV(w, val, opts)
	default:
		return writeMarkdown(w, val)
	}
}

func writeJSON(w io.Writer, v any) error {
	if raw, ok := v.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		buf.WriteByte('\n')
		_, err := buf.WriteTo(w)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func writeText(w io.Writer, v any) error {
	var b strings.Builder
	switch v := v.(type) {
	case *object:
		width := 0
		for _, k := range v.keys {
			width = max(width, len(k))
		}
		for _, k := range v.keys {
			fmt.Fprintf(&b, "%-*s: %s\n", width, k, cell(v.values[k]))
		}
	case []any:
		if header, rs, ok := rows(v); ok {
			t := table.New().
				Border(lipgloss.HiddenBorder()).
				BorderTop(false).
				BorderBottom(false).
				BorderLeft(false).
				BorderRight(false).
				BorderHeader(true).
				Headers(header...).
				Rows(rs...)
			b.WriteString(t.String())
			b.WriteByte('\n')
			break
		}
		for _, item := range v {
			b.WriteString(cell(item))
			b.WriteByte('\n')
		}
	default:
		b.WriteString(cell(v))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// tabular turns any value into a header and rows. A single object is one
// row; scalars are a single unnamed column.
func tabular(v any) ([]string, [][]string) {
	switch v := v.(type) {
	case *object:
		header, rs, _ := rows([]any{v})
		return header, rs
	case []any:
		if header, rs, ok := rows(v); ok {
			return header, rs
		}
		rs := make([][]string, 0, len(v))
		for _, item := range v {
			rs = append(rs, []string{cell(item)})
		}
		return nil, rs
	default:
		return nil, [][]string{{cell(v)}}
	}
}

func writeCSV(w io.Writer, v any, opts Options) error {
	header, rs := tabular(v)
	cw := csv.NewWriter(w)
	if opts.CSVHeader && len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	if err := cw.WriteAll(rs); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func writeMarkdown(w io.Writer, v any) error {
	var b strings.Builder
	mdRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(mdEscape(c))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	if obj, ok := v.(*object); ok {
		mdRow([]string{"Property", "Value"})
		mdRow([]string{"---", "---"})
		for _, k := range obj.keys {
			mdRow([]string{k, cell(obj.values[k])})
		}
	} else {
		header, rs := tabular(v)
		if len(header) == 0 {
			header = []string{"Value"}
		}
		sep := make([]string, len(header))
		for i := range sep {
			sep[i] = "---"
		}
		mdRow(header)
		mdRow(sep)
		for _, r := range rs {
			mdRow(r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var mdReplacer = strings.NewReplacer("|", "\\|", "\r\n", "<br>", "\n", "<br>")

func mdEscape(s string) string {
	return mdReplacer.Replace(s)
}
