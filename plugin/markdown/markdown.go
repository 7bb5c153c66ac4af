// Package markdown renders card content to sanitized-enough HTML for the
// API and the feed.
package markdown

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Service renders markdown. The goldmark instance is safe to share;
// per-call state lives in the parse.
type Service struct {
	md goldmark.Markdown
}

// NewService creates a markdown service with GFM extensions. Raw HTML in
// the source is escaped, not passed through.
func NewService() *Service {
	return &Service{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

// RenderHTML converts markdown to HTML.
func (s *Service) RenderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(source), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return buf.String(), nil
}
