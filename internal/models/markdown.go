package models

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
		),
	),
)

// RenderMarkdown converts assistant message content from markdown into HTML suitable
// for the message bubble templates. The output is trusted template HTML, so this must
// only be called on assistant content; user input goes through plain HTML escaping.
func RenderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	//nolint:gosec // goldmark output with the default sanitizing renderer.
	return template.HTML(buf.String()), nil
}
