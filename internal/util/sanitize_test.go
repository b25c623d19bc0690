package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-manager/pkg/fault"
)

func TestSanitizeFilenameAccepts(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		allowHidden bool
		want        string
	}{
		{name: "plain", in: "report.pdf", want: "report.pdf"},
		{name: "trims whitespace", in: "  notes.txt  ", want: "notes.txt"},
		{name: "strips control runes", in: "we\x08ird.txt", want: "weird.txt"},
		{name: "unicode kept", in: "über.txt", want: "über.txt"},
		{name: "hidden allowed", in: ".env", allowHidden: true, want: ".env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.in, tt.allowHidden)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeFilenameRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "whitespace only", in: "   "},
		{name: "dot", in: "."},
		{name: "dot dot", in: ".."},
		{name: "slash", in: "a/b"},
		{name: "backslash", in: `a\b`},
		{name: "null byte", in: "a\x00b"},
		{name: "angle bracket", in: "a<b"},
		{name: "pipe", in: "a|b"},
		{name: "reserved windows name", in: "CON"},
		{name: "reserved with extension", in: "con.txt"},
		{name: "hidden not allowed", in: ".secret"},
		{name: "too long", in: strings.Repeat("a", 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeFilename(tt.in, false)
			require.Error(t, err)
			assert.Equal(t, fault.KindBadRequest, fault.KindOf(err))
		})
	}
}
