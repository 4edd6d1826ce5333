package tour

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeNarration(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Маршрут начинается с картины «Утро».", "Маршрут начинается с картины «Утро»."},
		{"emoji and markdown", "**Ваш маршрут** 🎨: 1) «Волна»!", "Ваш маршрут : 1 «Волна»"},
		{"latin and quotes", `Art "Nouveau", 1900: ok?`, `Art "Nouveau", 1900: ok`},
		{"newlines kept", "Первый.\n\nВторой — третий", "Первый.\n\nВторой  третий"},
		{"yo", "Ёлка и ёж", "Ёлка и ёж"},
		{"no-break space", "a\u00a0b<i>«x»</i>…", "a\u00a0bi«x»i"},
		{"line separator", "\u2028line\tsep", "\u2028line\tsep"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNarration(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizeNarration(got))
		})
	}
}
