// Package formatter renders classified entries, sessions and multi-session
// summaries as human-readable text. Rendering is total: any entry produces a
// string, and the empty string means "suppress this line".
package formatter

import "github.com/fatih/color"

// Styles carries the color set used for console output. A plain variant with
// every color disabled produces the text written to files and the clipboard.
type Styles struct {
	Header   *color.Color
	Footer   *color.Color
	Meta     *color.Color
	Info     *color.Color
	Success  *color.Color
	Warning  *color.Color
	Error    *color.Color
	Category *color.Color
	Detail   *color.Color
}

// NewStyles returns the default console palette. With plain set, every color
// is disabled and rendering degrades to unstyled text.
func NewStyles(plain bool) *Styles {
	s := &Styles{
		Header:   color.New(color.FgGreen, color.Bold),
		Footer:   color.New(color.FgRed, color.Bold),
		Meta:     color.New(color.FgCyan),
		Info:     color.New(color.FgCyan),
		Success:  color.New(color.FgGreen),
		Warning:  color.New(color.FgYellow),
		Error:    color.New(color.FgRed),
		Category: color.New(color.FgMagenta),
		Detail:   color.New(color.FgBlue),
	}
	if plain {
		for _, c := range []*color.Color{
			s.Header, s.Footer, s.Meta, s.Info, s.Success,
			s.Warning, s.Error, s.Category, s.Detail,
		} {
			c.DisableColor()
		}
	}
	return s
}
