package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Format is an output format for reports
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "markdown", "md" or "html"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want markdown or html)", s)
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	if f == FormatHTML {
		return "html"
	}
	return "md"
}

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// RenderHTML converts Markdown to an HTML fragment
func RenderHTML(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// HTML renders the report as a standalone HTML page
func (r *Report) HTML() ([]byte, error) {
	body, err := RenderHTML([]byte(r.Markdown()))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>Revenium Integration Report: %s</title>\n", html.EscapeString(r.Project))
	buf.WriteString("<style>body{font-family:sans-serif;max-width:960px;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>\n")
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// Render returns the report in format
func (r *Report) Render(format Format) ([]byte, error) {
	switch format {
	case FormatHTML:
		return r.HTML()
	case FormatMarkdown, "":
		return []byte(r.Markdown()), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
