package render

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "Town Theme", "Town Theme"},
		{"tab kept", "a\tb", "a\tb"},
		{"control dropped", "Town\x00 Theme\x1b", "Town Theme"},
		{"c1 control dropped", "a\u0085b", "ab"},
		{"invalid utf8 dropped", "caf\xe9", "caf"},
		{"nbsp replaced", "a\u00a0b", "a b"},
		{"unicode kept", "町のテーマ", "町のテーマ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefghij", 5))

	wide := Truncate("町のテーマ曲", 7)
	assert.LessOrEqual(t, lipgloss.Width(wide), 7)
	assert.Equal(t, "町のテ…", wide)
}

func TestRow(t *testing.T) {
	assert.Equal(t, "a    b", Row("a", "b", 6))
	assert.Equal(t, "left right", Row("left", "right", 4))
}
