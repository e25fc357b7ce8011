// Package render turns generated description blocks into sanitized HTML
package render

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// ErrEmptyContent is returned when no renderable blocks remain after sanitizing
var ErrEmptyContent = errors.New("empty description content")

// Block is one structured piece of generated content delivered by the service
type Block struct {
	Tag        string            `json:"tag"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// allowedTags is the tag allow-list for both block tags and inline markup
var allowedTags = map[string]bool{
	"p": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
	"strong": true, "em": true, "a": true, "span": true,
}

// allowedAttrs is the attribute allow-list for inline markup
var allowedAttrs = map[string]bool{
	"href": true, "title": true, "class": true, "id": true, "target": true, "rel": true,
}

var attrNameRe = regexp.MustCompile(`[^a-z0-9_-]`)

// Blocks renders description blocks to an HTML fragment. Blocks without text
// are skipped, unknown tags fall back to <p>, text is sanitized against the
// tag allow-list and attributes are escaped per pair. Rendered blocks are
// joined with newlines.
func Blocks(blocks []Block) (string, error) {
	parts := make([]string, 0, len(blocks))

	for _, block := range blocks {
		if strings.TrimSpace(block.Text) == "" {
			continue
		}

		tag := strings.ToLower(block.Tag)
		if !allowedTags[tag] {
			tag = "p"
		}

		text := Sanitize(block.Text)
		if text == "" {
			continue
		}

		parts = append(parts, fmt.Sprintf("<%s%s>%s</%s>", tag, renderAttributes(block.Attributes), text, tag))
	}

	if len(parts) == 0 {
		return "", ErrEmptyContent
	}
	return strings.Join(parts, "\n"), nil
}

// renderAttributes serializes an attribute map as ` name="value"` pairs with
// sanitized names and escaped values, in deterministic order.
func renderAttributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		clean := attrNameRe.ReplaceAllString(strings.ToLower(name), "")
		if clean == "" {
			continue
		}
		b.WriteString(fmt.Sprintf(" %s=%q", clean, html.EscapeString(attrs[name])))
	}
	return b.String()
}

// Sanitize strips markup not on the allow-list from an HTML fragment. Text
// inside disallowed elements is preserved, attributes not on the attribute
// allow-list are dropped, and everything else is re-escaped.
func Sanitize(input string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(input))

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())

		case html.TextToken:
			b.WriteString(html.EscapeString(z.Token().Data))

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if !allowedTags[tok.Data] {
				continue
			}
			b.WriteString("<" + tok.Data)
			for _, attr := range tok.Attr {
				if !allowedAttrs[strings.ToLower(attr.Key)] {
					continue
				}
				b.WriteString(fmt.Sprintf(" %s=%q", strings.ToLower(attr.Key), html.EscapeString(attr.Val)))
			}
			b.WriteString(">")

		case html.EndTagToken:
			tok := z.Token()
			if allowedTags[tok.Data] {
				b.WriteString("</" + tok.Data + ">")
			}
		}
	}
}
