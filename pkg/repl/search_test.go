package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	names := commandNames()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "Typo", query: "/fils", want: "/files"},
		{name: "Transposition", query: "/uplaod", want: "/upload"},
		{name: "Prefix", query: "/his", want: "/history"},
		{name: "Missing letter", query: "/rese", want: "/reset"},
		{name: "Case", query: "/HELP", want: "/help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.query, names)
			if assert.NotEmpty(t, got) {
				assert.Equal(t, tt.want, got[0])
			}
		})
	}
}

func TestSuggestNothingClose(t *testing.T) {
	assert.Empty(t, Suggest("/zzzzzzzzzz", commandNames()))
	assert.Nil(t, Suggest("", commandNames()))
	assert.Nil(t, Suggest("/files", nil))
}
