// Package printer renders queries and suggestions for the one-shot commands.
package printer

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorState manages global color output settings for the printer
type ColorState struct {
	enabled bool
}

var globalColorState = &ColorState{}

// InitColorState initializes color support. An explicit setting wins, then
// NO_COLOR, then terminal detection on writer. Unknown writers get no color.
func InitColorState(explicitSetting *bool, writer io.Writer) {
	if explicitSetting != nil {
		setColor(*explicitSetting)
		return
	}

	if os.Getenv("NO_COLOR") != "" {
		setColor(false)
		return
	}

	if f, ok := writer.(*os.File); ok {
		setColor(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
		return
	}

	setColor(false)
}

func setColor(enabled bool) {
	globalColorState.enabled = enabled
	color.NoColor = !enabled
}

// IsColorEnabled returns whether color output is currently enabled.
func IsColorEnabled() bool {
	return globalColorState.enabled
}
