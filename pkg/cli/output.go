package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// output controls whether commands print structured data instead of styled text
var output = OutputTable

var outWriter io.Writer = os.Stdout

// SetOutputFormat sets the output mode
func SetOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "", OutputTable:
		output = OutputTable
	case OutputJSON:
		output = OutputJSON
	case OutputYAML, "yml":
		output = OutputYAML
	default:
		return fmt.Errorf("unsupported output format %q (expected table, json or yaml)", format)
	}
	return nil
}

// IsStructuredOutput returns true if json or yaml output is enabled
func IsStructuredOutput() bool {
	return output != OutputTable
}

// PrintStructured outputs data as JSON or YAML if that mode is enabled, returns
// true if it did
func PrintStructured(data interface{}) bool {
	switch output {
	case OutputJSON:
		enc := json.NewEncoder(outWriter)
		enc.SetIndent("", "  ")
		enc.Encode(data)
		return true
	case OutputYAML:
		enc := yaml.NewEncoder(outWriter)
		enc.SetIndent(2)
		enc.Encode(data)
		enc.Close()
		return true
	}
	return false
}

// PrintSuccess prints a success message with a green checkmark
func PrintSuccess(msg string) {
	fmt.Fprintf(outWriter, "  %s %s\n", SuccessStyle.Render(SymbolSuccess), msg)
}

// PrintSuccessf prints a formatted success message
func PrintSuccessf(format string, args ...interface{}) {
	PrintSuccess(fmt.Sprintf(format, args...))
}

// PrintErrorMsg prints a simple error message string
func PrintErrorMsg(msg string) {
	fmt.Printf("  %s %s\n", ErrorStyle.Render(SymbolError), ErrorStyle.Render(msg))
}

// PrintWarning prints a warning message with a yellow indicator
func PrintWarning(msg string) {
	fmt.Fprintf(outWriter, "  %s %s\n", WarningStyle.Render(SymbolWarning), WarningStyle.Render(msg))
}

// PrintInfo prints an info message with an arrow
func PrintInfo(msg string) {
	fmt.Fprintf(outWriter, "  %s %s\n", InfoStyle.Render(SymbolInfo), msg)
}

// PrintHint prints a subtle hint/suggestion
func PrintHint(msg string) {
	fmt.Fprintf(outWriter, "\n  %s\n", HintStyle.Render(msg))
}

// PrintSuggestions prints a list of suggestions
func PrintSuggestions(title string, suggestions []string) {
	fmt.Println()
	fmt.Printf("  %s\n", DimStyle.Render(title))
	for _, s := range suggestions {
		fmt.Printf("    %s %s\n", DimStyle.Render(SymbolBullet), s)
	}
}

// PrintHeader prints a section header
func PrintHeader(title string) {
	fmt.Fprintf(outWriter, "\n  %s\n\n", BoldStyle.Render(title))
}

// PrintKeyValue prints a key-value pair with consistent alignment
func PrintKeyValue(key, value string) {
	fmt.Fprintf(outWriter, "  %s %s\n", KeyStyle.Render(key), value)
}

// PrintNewline prints an empty line
func PrintNewline() {
	fmt.Fprintln(outWriter)
}

// Table represents a styled table
type Table struct {
	Headers []string
	Rows    [][]string
	Widths  []int
}

// NewTable creates a new table with the given headers
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		Headers: headers,
		Widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	// Pad or truncate to match header count
	row := make([]string, len(t.Headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
			if len(cells[i]) > t.Widths[i] {
				t.Widths[i] = len(cells[i])
			}
		}
	}
	t.Rows = append(t.Rows, row)
}

// Print renders the table
func (t *Table) Print() {
	if len(t.Rows) == 0 {
		return
	}

	// Print headers
	fmt.Fprint(outWriter, "  ")
	for i, h := range t.Headers {
		style := TableHeaderStyle.Width(t.Widths[i] + 2)
		fmt.Fprint(outWriter, style.Render(h))
	}
	fmt.Fprintln(outWriter)

	// Print separator
	fmt.Fprint(outWriter, "  ")
	for i := range t.Headers {
		fmt.Fprint(outWriter, DimStyle.Render(strings.Repeat("─", t.Widths[i])), "  ")
	}
	fmt.Fprintln(outWriter)

	// Print rows
	for _, row := range t.Rows {
		fmt.Fprint(outWriter, "  ")
		for i, cell := range row {
			style := TableCellStyle.Width(t.Widths[i] + 2)
			fmt.Fprint(outWriter, style.Render(cell))
		}
		fmt.Fprintln(outWriter)
	}
}

// FormatBytes renders a byte count for humans; zero means the size is unknown
func FormatBytes(n int64) string {
	if n <= 0 {
		return "-"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Truncate truncates a string to maxLen, adding "..." if needed
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
