package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"diacritics", "Entendendo a Ansiedade!", "entendendo-a-ansiedade"},
		{"portuguese", "Superdotação e Educação", "superdotacao-e-educacao"},
		{"cedilla", "Coração", "coracao"},
		{"punctuation", "O que é TDAH? Um guia.", "o-que-e-tdah-um-guia"},
		{"multiple spaces", "a   b\t c", "a-b-c"},
		{"leading trailing", "  --Olá--  ", "ola"},
		{"hyphen runs", "a -- b", "a-b"},
		{"numbers", "10 dicas para 2026", "10-dicas-para-2026"},
		{"only symbols", "!!! ???", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}
