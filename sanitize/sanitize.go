// Package sanitize turns raw Stack Overflow post bodies and comments into
// plain single-line text suitable for sentiment classification.
package sanitize

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// Tags whose whole body is dropped, not just the markup.
var DisallowedBodyTags = []atom.Atom{atom.Pre, atom.Code, atom.Blockquote}

var (
	// any run of white space, Unicode separators included
	whitespacePattern = regexp.MustCompile(`[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]+`)
	urlPattern        = regexp.MustCompile(`(?i)https?://\S+`)
	// inline markdown code left in posts by users who did not format code
	// blocks properly; triple backticks are tried first
	mdCodePattern = regexp.MustCompile("(```.*?```)|(`.*?`)")
)

var markdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Post sanitizes body of a Stack Overflow post, which is HTML.
func Post(text string) (string, error) {
	cleaned, err := sanitizeDocument(text)
	if err != nil {
		return "", err
	}

	cleaned = mdCodePattern.ReplaceAllString(cleaned, "")

	return strings.TrimSpace(cleaned), nil
}

// Comment sanitizes a Stack Overflow comment, which is markdown.
func Comment(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("failed to render comment markdown: %s", err)
	}

	return sanitizeDocument(buf.String())
}

// sanitizeDocument does the part of sanitization that is common to all documents.
func sanitizeDocument(text string) (string, error) {
	cleaned, err := removeTagsAndDisallowedBodies(text, DisallowedBodyTags)
	if err != nil {
		return "", err
	}

	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = urlPattern.ReplaceAllString(cleaned, "")
	cleaned = norm.NFC.String(cleaned)

	return strings.TrimSpace(cleaned), nil
}

// removeTagsAndDisallowedBodies returns text content of given HTML, with all
// elements of disallowed tags removed together with their content.
func removeTagsAndDisallowedBodies(text string, disallowed []atom.Atom) (string, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %s", err)
	}

	selectors := make([]string, 0, len(disallowed))
	for _, tag := range disallowed {
		selectors = append(selectors, tag.String())
	}

	document.Find(strings.Join(selectors, ", ")).Remove()

	return document.Text(), nil
}
