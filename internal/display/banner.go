package display

import (
	"fmt"
	"io"

	"github.com/backmassage/multinight/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, `                 _ _   _       _       _     _
 _ __ ___  _   _| | |_(_)_ __ (_) __ _| |__ | |_
| '_ `+"`"+` _ \| | | | | __| | '_ \| |/ _`+"`"+` | '_ \| __|
| | | | | | |_| | | |_| | | | | | (_| | | | | |_
|_| |_| |_|\__,_|_|\__|_|_| |_|_|\__, |_| |_|\__|
                                 |___/
`)
	fmt.Fprint(w, term.NC)
}
