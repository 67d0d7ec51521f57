package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultStyle is the chroma style used for highlighted output
const DefaultStyle = "monokai"

// Options controls how results are printed
type Options struct {
	Color bool   // highlight the json for a terminal
	Style string // chroma style name
}

// JSON writes v to w as indented json
func JSON(w io.Writer, v any, opts Options) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	if !opts.Color {
		_, err := fmt.Fprintf(w, "%s\n", b)
		return err
	}

	style := opts.Style
	if style == "" {
		style = DefaultStyle
	}
	if err := quick.Highlight(w, string(b)+"\n", "json", "terminal256", style); err != nil {
		return fmt.Errorf("failed to highlight output: %w", err)
	}
	return nil
}
