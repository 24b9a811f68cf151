package graduate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchPattern(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"plain text passes through", "alice", "%alice%"},
		{"underscore matched literally", "_", `%\_%`},
		{"student id with underscore", "S_100", `%S\_100%`},
		{"percent matched literally", "100%", `%100\%%`},
		{"backslash matched literally", `a\b`, `%a\\b%`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, searchPattern(tc.query))
		})
	}
}
