package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"golang.org/x/term"
)

const (
	colorPrimary   = "#7C3AED"
	colorSecondary = "#10B981"
	colorWarning   = "#F59E0B"
	colorError     = "#EF4444"
	colorMuted     = "#6B7280"
	colorText      = "#E5E7EB"

	maxRenderWidth = 100
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary)).Bold(true)
	palStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorSecondary)).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)).Italic(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError)).Bold(true)
)

// printer writes chat output, styled only when w is a terminal.
type printer struct {
	w        io.Writer
	styled   bool
	markdown *glamour.TermRenderer
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: w}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p
	}
	p.styled = true

	width := 80
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
		width = min(cols, maxRenderWidth)
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle()),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		slog.Debug("markdown renderer unavailable", "error", err)
		return p
	}
	p.markdown = r
	return p
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// Prompt prints the input prompt without a newline.
func (p *printer) Prompt() {
	fmt.Fprint(p.w, p.style(promptStyle, "you> "))
}

// Reply prints an assistant reply, rendering markdown on a terminal.
func (p *printer) Reply(text string) {
	if p.markdown != nil {
		if rendered, err := p.markdown.Render(text); err == nil {
			text = strings.Trim(rendered, "\n")
		}
	}
	fmt.Fprintf(p.w, "%s %s\n", p.style(palStyle, "pal>"), text)
}

func (p *printer) Println(text string) {
	fmt.Fprintln(p.w, text)
}

func (p *printer) Info(text string) {
	fmt.Fprintln(p.w, p.style(mutedStyle, text))
}

func (p *printer) Warn(text string) {
	fmt.Fprintln(p.w, p.style(warnStyle, text))
}

func (p *printer) Error(err error) {
	fmt.Fprintln(p.w, p.style(errorStyle, "error: "+err.Error()))
}

// markdownStyle is a compact dark style in the prompt palette.
func markdownStyle() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(colorText)},
			Margin:         uintPtr(0),
		},
		Paragraph: ansi.StyleBlock{},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(colorPrimary), Bold: boolPtr(true)},
		},
		Strong: ansi.StylePrimitive{Bold: boolPtr(true), Color: stringPtr("#FFFFFF")},
		Emph:   ansi.StylePrimitive{Italic: boolPtr(true)},
		List: ansi.StyleList{
			LevelIndent: 2,
			StyleBlock:  ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: stringPtr(colorText)}},
		},
		Item:        ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{BlockPrefix: ". "},
		Task: ansi.StyleTask{
			Ticked:   "[✓] ",
			Unticked: "[ ] ",
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: stringPtr(colorWarning)},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: stringPtr(colorText)},
				Margin:         uintPtr(0),
			},
		},
		Link: ansi.StylePrimitive{Color: stringPtr("#60A5FA"), Underline: boolPtr(true)},
	}
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }
func uintPtr(u uint) *uint       { return &u }
