package extract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/semsearch/internal/extract"
	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
)

func TestExtractTxt(t *testing.T) {
	out, err := extract.Text("notes.txt", []byte("plain content"))
	require.NoError(t, err)
	require.Equal(t, "plain content", out)
}

func TestExtractMarkdownStripsFormatting(t *testing.T) {
	src := "# Heading\n\nSome *emphasized* text with a [link](https://example.com).\n\n```\ncode line\n```\n"
	out, err := extract.Text("doc.md", []byte(src))
	require.NoError(t, err)
	require.Contains(t, out, "Heading")
	require.Contains(t, out, "Some emphasized text with a link.")
	require.Contains(t, out, "code line")
	require.NotContains(t, out, "](")
	require.NotContains(t, out, "# ")
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := extract.Text("image.png", []byte{0x89, 0x50})
	require.ErrorIs(t, err, apperrors.ErrUnsupportedInput)
}

func TestExtractInvalidUTF8(t *testing.T) {
	_, err := extract.Text("broken.txt", []byte{0xff, 0xfe, 0xfd})
	require.ErrorIs(t, err, apperrors.ErrUnsupportedInput)
}

func TestExtractBrokenPDF(t *testing.T) {
	_, err := extract.Text("broken.pdf", []byte("not a pdf at all"))
	require.ErrorIs(t, err, apperrors.ErrUnsupportedInput)
}
