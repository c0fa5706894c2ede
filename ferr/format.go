package ferr

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders an *Error as a one-line diagnostic: an
// "error[Ennnn]: " label followed by the error's own Error() text
// ("[Ennnn] <message>", plus " at line:col" when it has a position),
// optionally followed by a blank line and a numbered list of suggestions
// drawn from the code's fixed table.
type Formatter struct {
	// UseColor enables ANSI color codes in the rendered output.
	UseColor bool
}

// NewFormatter creates a Formatter. Color output is additive and never
// changes the text content, only its styling.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

var (
	colorCode  = color.New(color.FgHiBlack)
	colorMsg   = color.New(color.FgRed, color.Bold)
	colorHint  = color.New(color.FgYellow)
	colorIndex = color.New(color.FgHiBlack)
)

// Format renders a single error.
func (f *Formatter) Format(err *Error) string {
	var b strings.Builder

	if f.UseColor {
		b.WriteString(colorMsg.Sprint("error"))
		b.WriteString(colorCode.Sprintf("[%s]", err.Code))
	} else {
		fmt.Fprintf(&b, "error[%s]", err.Code)
	}
	b.WriteString(": ")
	b.WriteString(err.Error())
	b.WriteString("\n")

	suggestions := err.Code.Suggestions()
	if len(suggestions) > 0 {
		b.WriteString("\n")
		for i, s := range suggestions {
			if f.UseColor {
				b.WriteString(colorIndex.Sprintf("  %d. ", i+1))
				b.WriteString(colorHint.Sprint(s))
			} else {
				fmt.Fprintf(&b, "  %d. %s", i+1, s)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// FormatMultiple renders a numbered "[i/N]" block per error plus a summary
// line, the way a multi-error parse failure is reported to a CLI user.
func (f *Formatter) FormatMultiple(errs []*Error) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}

	var b strings.Builder
	total := len(errs)
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		if f.UseColor {
			b.WriteString(colorMsg.Sprintf("error[%d/%d]", i+1, total))
		} else {
			fmt.Fprintf(&b, "error[%d/%d]", i+1, total)
		}
		if f.UseColor {
			b.WriteString(colorCode.Sprintf("[%s]", err.Code))
		} else {
			fmt.Fprintf(&b, "[%s]", err.Code)
		}
		b.WriteString(": ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("found %d errors", total)
	if f.UseColor {
		b.WriteString(colorMsg.Sprint(summary))
	} else {
		b.WriteString(summary)
	}
	b.WriteString("\n")
	return b.String()
}
