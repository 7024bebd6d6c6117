package bom

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestClean_Fixture(t *testing.T) {
	path := writeTemp(t, readFixture(t))

	require.NoError(t, Clean(path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, []byte(`,"Date","Minimum temperature (`)), "header is the first line")
	// 0xB0 is the Latin-1 degree sign; the rewrite keeps the encoding.
	assert.Contains(t, string(got), "(\xb0C)")
	assert.NotContains(t, string(got), "Bureau of Meteorology")
	assert.Equal(t, 32, bytes.Count(got, []byte("\n")), "header plus 31 days")
}

func TestStripPreamble(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lf", "title\nnotes\n\nhead\nrow\n", "head\nrow\n"},
		{"crlf", "title\r\n\r\nhead\r\nrow\r\n", "head\r\nrow\r\n"},
		{"whitespace only line", "title\n   \t\nhead\n", "head\n"},
		{"first blank line wins", "title\n\nhead\n\nrow\n", "head\n\nrow\n"},
		{"blank first line", "\nhead\n", "head\n"},
		{"nothing after blank", "title\n\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stripPreamble("report.csv", []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestStripPreamble_SuffixNeverStartsWithFirstBlank(t *testing.T) {
	inputs := []string{
		"a\n\nb\n",
		"a\r\n\r\n\r\nb\r\n",
		"\n\n\n",
	}
	for _, in := range inputs {
		got, err := stripPreamble("report.csv", []byte(in))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(in, string(got)), "output is a suffix of %q", in)
		assert.Less(t, len(got), len(in))
	}
}

func TestClean_NoBlankLine(t *testing.T) {
	content := []byte("title\nhead\nrow\n")
	path := writeTemp(t, content)

	err := Clean(path)
	require.Error(t, err)

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, path, pe.Path)

	got, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, content, got, "file is left untouched")
}

func TestClean_MissingFile(t *testing.T) {
	err := Clean(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
