package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
)

// Text extracts plain text from an uploaded file based on its extension.
// The result still goes through normalization before chunking; this layer
// only strips the container format.
func Text(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid utf-8", apperrors.ErrUnsupportedInput, filename)
		}
		return string(data), nil
	case ".md", ".markdown":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid utf-8", apperrors.ErrUnsupportedInput, filename)
		}
		return markdownText(data), nil
	case ".pdf":
		out, err := pdfText(data)
		if err != nil {
			return "", fmt.Errorf("%w: extract pdf %s: %v", apperrors.ErrUnsupportedInput, filename, err)
		}
		return out, nil
	default:
		return "", fmt.Errorf("%w: file type %q", apperrors.ErrUnsupportedInput, ext)
	}
}

func markdownText(source []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))
	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if txt := extractNodeText(node, source); txt != "" {
			blocks = append(blocks, txt)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func extractNodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.FencedCodeBlock:
			for i := 0; i < t.Lines().Len(); i++ {
				line := t.Lines().At(i)
				sb.Write(line.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	content, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, content); err != nil {
		return "", err
	}
	return sb.String(), nil
}
