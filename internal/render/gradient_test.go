package render

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradient_KeepsText(t *testing.T) {
	for _, text := range []string{"", "a", "Town Theme", "町のテーマ", "éte"} {
		got := Gradient(text, "#ff87d7", "#87afff")
		assert.Equal(t, text, ansi.Strip(got))
	}
}

func TestBlend(t *testing.T) {
	colors := blend(5, "#ff0000", "#0000ff")
	require.Len(t, colors, 5)
	red, _ := colorful.Hex("#ff0000")
	blue, _ := colorful.Hex("#0000ff")
	assert.InDelta(t, 0, colors[0].DistanceRgb(red), 0.01)
	assert.InDelta(t, 0, colors[4].DistanceRgb(blue), 0.01)
	assert.NotEqual(t, colors[1].Hex(), colors[3].Hex())

	assert.Len(t, blend(1, "#ff0000", "#0000ff"), 1)
}

func TestParse_ANSIFallsBackToGray(t *testing.T) {
	assert.Equal(t, "#808080", parse(lipgloss.Color("212")).Hex())
	assert.Equal(t, "#ff87d7", parse("#ff87d7").Hex())
}
