package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBlocks(t *testing.T) {
	cases := map[string]struct {
		content string
		want    []string
	}{
		"single block": {
			content: "a = 1\nb = a + 1\n",
			want:    []string{"a = 1\nb = a + 1"},
		},
		"blank lines separate blocks": {
			content: "a = 1\n\n\nb = a + 1\n",
			want:    []string{"a = 1", "b = a + 1"},
		},
		"comment lines dropped": {
			content: "# header\na = 1\n  # indented comment\nb = 2\n",
			want:    []string{"a = 1\nb = 2"},
		},
		"indentation preserved": {
			content: "def f(x):\n    return x * 2\n",
			want:    []string{"def f(x):\n    return x * 2"},
		},
		"crlf endings": {
			content: "a = 1\r\n\r\nb = 2\r\n",
			want:    []string{"a = 1", "b = 2"},
		},
		"only comments": {
			content: "# nothing\n# here\n",
			want:    nil,
		},
		"empty": {
			content: "",
			want:    nil,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, splitBlocks(tc.content))
		})
	}
}
