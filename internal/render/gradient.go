package render

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Gradient renders text with a horizontal color gradient from one hex
// color to another, one color per grapheme cluster.
func Gradient(text string, from, to lipgloss.Color) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	switch len(clusters) {
	case 0:
		return ""
	case 1:
		return lipgloss.NewStyle().Foreground(from).Render(text)
	}

	var b strings.Builder
	for i, c := range blend(len(clusters), from, to) {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(clusters[i]))
	}
	return b.String()
}

// blend returns n colors from from to to, blended in HCL space.
func blend(n int, from, to lipgloss.Color) []colorful.Color {
	c1 := parse(from)
	c2 := parse(to)
	if n < 2 {
		return []colorful.Color{c1}
	}
	colors := make([]colorful.Color, n)
	for i := range n {
		colors[i] = c1.BlendHcl(c2, float64(i)/float64(n-1)).Clamped()
	}
	return colors
}

// parse reads a "#rrggbb" color. ANSI palette indexes become neutral gray.
func parse(c lipgloss.Color) colorful.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	col, _ := colorful.MakeColor(color.Gray{Y: 128})
	return col
}
