// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // detect based on terminal and NO_COLOR
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

type style func(a ...interface{}) string

// palette holds the styles used for each part of a rendered diagnostic.
type palette struct {
	bold     style
	yellow   style
	boldRed  style
	boldBlue style
	boldCyan style
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) style {
		if !enabled {
			return fmt.Sprint
		}
		c := color.New(attrs...)
		c.EnableColor()
		return c.SprintFunc()
	}
	return palette{
		bold:     mk(color.Bold),
		yellow:   mk(color.FgYellow, color.Bold),
		boldRed:  mk(color.FgRed, color.Bold),
		boldBlue: mk(color.FgBlue, color.Bold),
		boldCyan: mk(color.FgCyan, color.Bold),
	}
}

// choosePalette selects the palette for mode and the output file, which is
// nil when the writer is not a file.
func choosePalette(mode ColorMode, w *os.File) palette {
	switch mode {
	case ColorAlways:
		return newPalette(true)
	case ColorNever:
		return newPalette(false)
	default:
		if os.Getenv("NO_COLOR") != "" {
			return newPalette(false)
		}
		return newPalette(isTerminal(w))
	}
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
