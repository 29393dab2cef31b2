package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Plain notes  ", "Plain notes"},
		{"R&D team", "R&D team"},
		{"<b>Bold</b> claim", "Bold claim"},
		{`hi<script>alert("x")</script>`, "hi"},
		{`<a href="https://x.test">link</a>`, "link"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(tt.in), "input %q", tt.in)
	}
}
