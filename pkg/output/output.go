package output

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/William2207/uteshop/cli/pkg/config"
	"github.com/fatih/color"
	json "github.com/json-iterator/go"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// Field is one labelled value of a record. Records keep field order.
type Field struct {
	Key   string
	Value interface{}
}

var (
	mu  sync.Mutex
	out io.Writer = color.Output
)

// SetWriter redirects all output, returning the previous writer
func SetWriter(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Print outputs data in the configured format with optional title
func Print(title string, data interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return printJSON(data)
	}
	return printText(title, data)
}

// PrintTable prints rows under headers. In JSON mode data is printed
// instead, so scripts get the raw records rather than formatted cells.
func PrintTable(headers []string, rows [][]string, data interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return printJSON(data)
	}
	printTable(headers, rows)
	return nil
}

// PrintRecord prints a single record. In JSON mode data is printed instead.
func PrintRecord(title string, fields []Field, data interface{}) error {
	switch GetOutputFormat() {
	case FormatJSON:
		return printJSON(data)
	case FormatTable:
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, []string{f.Key, fmt.Sprintf("%v", f.Value)})
		}
		printTable([]string{"Field", "Value"}, rows)
		return nil
	default:
		printRecordText(title, fields)
		return nil
	}
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(writer(), msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(writer(), "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(writer(), msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(writer(), "Warning: "+msg+"\n", args...)
}

// Println prints a plain line
func Println(args ...interface{}) {
	fmt.Fprintln(writer(), args...)
}

func printJSON(data interface{}) error {
	encoded, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(writer(), encoded)
	return nil
}

func printText(title string, data interface{}) error {
	w := writer()
	if title != "" {
		color.New(color.Bold).Fprintf(w, "%s:\n", title)
	}
	if s, ok := data.(fmt.Stringer); ok {
		fmt.Fprintln(w, s.String())
		return nil
	}
	encoded, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, encoded)
	return nil
}

func printRecordText(title string, fields []Field) {
	w := writer()
	bold := color.New(color.Bold)
	if title != "" {
		bold.Fprintf(w, "%s\n", title)
	}
	for _, f := range fields {
		bold.Fprint(w, f.Key+": ")
		fmt.Fprintf(w, "%v\n", f.Value)
	}
}

func printTable(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(writer(), 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	for i, h := range headers {
		bold.Fprint(tw, h)
		if i < len(headers)-1 {
			fmt.Fprint(tw, "\t")
		}
	}
	fmt.Fprintln(tw)

	for _, row := range rows {
		for i, cell := range row {
			fmt.Fprint(tw, cell)
			if i < len(row)-1 {
				fmt.Fprint(tw, "\t")
			}
		}
		fmt.Fprintln(tw)
	}

	tw.Flush()
}

// FormatAsJSON converts data to a compact JSON string
func FormatAsJSON(data interface{}) (string, error) {
	encoded, err := json.ConfigCompatibleWithStandardLibrary.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// FormatAsPrettyJSON converts data to an indented JSON string
func FormatAsPrettyJSON(data interface{}) (string, error) {
	encoded, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
