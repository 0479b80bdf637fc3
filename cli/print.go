package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Errorf prints a red "Error: " prefixed message to w.
func Errorf(w io.Writer, format string, a ...interface{}) {
	if _, err := color.New(color.FgRed, color.Bold).Fprint(w, "Error: "); err != nil {
		return
	}
	fmt.Fprintf(w, format+"\n", a...)
}
