// Package printer writes styled status output for the CLI.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
	"golang.org/x/term"
)

// ANSI color codes (Tokyo Night palette)
const (
	ColorReset     = "\033[0m"
	ColorRed       = "\033[38;2;215;95;107m"  // #d75f6b
	ColorGreen     = "\033[38;2;158;206;106m" // #9ece6a
	ColorYellow    = "\033[38;2;224;175;104m" // #e0af68
	ColorPurple    = "\033[38;2;187;154;247m" // #bb9af7
	ColorGray      = "\033[38;2;86;95;137m"   // #565f89
	ColorBold      = "\033[1m"
	ColorUnderline = "\033[4m"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
	Eye   = "◉"
)

type ctxKey struct{}

// Printer handles formatted output. Colors are only emitted when the writer
// is a terminal.
type Printer struct {
	writer io.Writer
	color  bool
}

// New creates a new Printer that writes to the given writer.
func New(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{writer: w, color: color}
}

// NewPlain creates a Printer that never emits color codes.
func NewPlain(w io.Writer) *Printer {
	return &Printer{writer: w}
}

// NewContext returns a context with the printer attached.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates a default one.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// FatalError prints a formatted error box and does NOT exit.
// Caller should handle exit code.
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.printValidationErrors(err, fieldErrs)
		return
	}

	p.line(p.colorize(ColorRed, "╭ Error"))
	for _, l := range strings.Split(err.Error(), "\n") {
		p.line(p.colorize(ColorRed, "│") + " " + p.colorize(ColorGray, l))
	}
	p.line(p.colorize(ColorRed, "╵"))
}

// printValidationErrors lists each field error under the wrapping context.
func (p *Printer) printValidationErrors(wrappedErr error, fieldErrs criterio.FieldErrors) {
	errStr := wrappedErr.Error()
	fieldErrStr := fieldErrs.Error()

	errContext := ""
	if idx := strings.Index(errStr, fieldErrStr); idx > 0 {
		errContext = strings.TrimSuffix(errStr[:idx], ": ")
	}

	p.line(p.colorize(ColorRed, "╭ Validation Error"))

	if errContext != "" {
		p.line(p.colorize(ColorRed, "│") + " " + p.colorize(ColorGray, errContext))
		p.line(p.colorize(ColorRed, "│"))
	}

	for _, fe := range fieldErrs {
		l := p.colorize(ColorRed, "│") + " " + p.colorize(ColorRed, Cross) + " "
		if fe.Field != "" {
			l += p.colorize(ColorGray, fe.Field+": ")
		}
		l += fe.Err.Error()
		p.line(l)
	}

	p.line(p.colorize(ColorRed, "╵"))
}

// Errorf prints an error message in red.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.colorize(ColorRed, Cross+" "+fmt.Sprintf(format, args...)))
}

// Successf prints a success message in green.
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.colorize(ColorGreen, Check+" "+fmt.Sprintf(format, args...)))
}

// Infof prints an info message in gray.
func (p *Printer) Infof(format string, args ...any) {
	p.line(p.colorize(ColorGray, Dot+" "+fmt.Sprintf(format, args...)))
}

// Warnf prints a warning message in yellow.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.colorize(ColorYellow, Dot+" "+fmt.Sprintf(format, args...)))
}

// Incognitof prints a message about incognito mode in purple.
func (p *Printer) Incognitof(format string, args ...any) {
	p.line(p.colorize(ColorPurple, Eye+" "+fmt.Sprintf(format, args...)))
}

// Printf prints a plain message without colors.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Section prints a section header (bold + underlined).
func (p *Printer) Section(title string) {
	p.line(p.style(ColorBold+ColorUnderline, title))
}

// CheckItem prints a success item with green checkmark.
func (p *Printer) CheckItem(label, detail string) {
	p.printItem(ColorGreen, Check, label, detail)
}

// WarnItem prints a warning item with yellow dot.
func (p *Printer) WarnItem(label, detail string) {
	p.printItem(ColorYellow, Dot, label, detail)
}

// FailItem prints a failure item with red cross.
func (p *Printer) FailItem(label, detail string) {
	p.printItem(ColorRed, Cross, label, detail)
}

func (p *Printer) printItem(color, symbol, label, detail string) {
	l := "  " + p.colorize(color, symbol) + " " + label
	if detail != "" {
		l += ": " + detail
	}
	p.line(l)
}

func (p *Printer) line(s string) {
	_, _ = io.WriteString(p.writer, s+"\n")
}

func (p *Printer) colorize(color, text string) string {
	return p.style(color, text)
}

func (p *Printer) style(codes, text string) string {
	if !p.color {
		return text
	}
	return codes + text + ColorReset
}
