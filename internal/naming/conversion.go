package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConversionFileName is written into the shared process directory.
const ConversionFileName = "conversion.txt"

// Conversion maps an engine-written frame to its path in the shared directory.
type Conversion struct {
	From string
	To   string
}

// FormatConversions renders one "'from' -> 'to'" line per entry.
func FormatConversions(entries []Conversion) string {
	var b strings.Builder
	for _, c := range entries {
		fmt.Fprintf(&b, "'%s' -> '%s'\n", c.From, c.To)
	}
	return b.String()
}

// WriteConversionFile writes entries to dir/conversion.txt, replacing any
// previous map, and returns the file path.
func WriteConversionFile(dir string, entries []Conversion) (string, error) {
	path := filepath.Join(dir, ConversionFileName)
	if err := os.WriteFile(path, []byte(FormatConversions(entries)), 0o644); err != nil {
		return "", fmt.Errorf("write conversion map: %w", err)
	}
	return path, nil
}
