// Package render turns a generated item into shareable documents: markdown
// for copying and sanitized HTML for export.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

var (
	md = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

	policy = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowDataURIImages()
		p.AllowElements("article", "section", "footer", "time")
		p.AllowAttrs("datetime").OnElements("time")
		p.AllowAttrs("class").OnElements("article", "section", "ul", "p")
		return p
	}()
)

// Markdown renders item as a markdown document.
func Markdown(item domain.HistoryItem) string {
	c := item.Content
	var b strings.Builder

	if c.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", c.Title)
	}
	if c.Pairings != "" {
		fmt.Fprintf(&b, "**%s**\n\n", c.Pairings)
	}
	if len(c.Traits) > 0 {
		b.WriteString(strings.Join(c.Traits, " · "))
		b.WriteString("\n\n")
	}
	if c.ImageURL != "" {
		fmt.Fprintf(&b, "![%s](%s)\n\n", altText(item), c.ImageURL)
	}
	if c.Description != "" {
		b.WriteString(c.Description)
		b.WriteString("\n\n")
	}
	if c.Body != "" {
		b.WriteString(strings.TrimSpace(c.Body))
		b.WriteString("\n\n")
	}
	if len(c.PlotHooks) > 0 {
		b.WriteString("## Plot hooks\n\n")
		for _, h := range c.PlotHooks {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// HTML renders item as a sanitized HTML fragment. Markdown in the body is
// converted, everything else is escaped.
func HTML(item domain.HistoryItem) (string, error) {
	c := item.Content
	var b bytes.Buffer

	fmt.Fprintf(&b, `<article class="muse-%s">`, html.EscapeString(string(item.Kind)))
	if c.Title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(c.Title))
	}
	if c.Pairings != "" {
		fmt.Fprintf(&b, `<p class="pairings"><strong>%s</strong></p>`, html.EscapeString(c.Pairings))
	}
	if len(c.Traits) > 0 {
		b.WriteString(`<ul class="traits">`)
		for _, t := range c.Traits {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(t))
		}
		b.WriteString("</ul>")
	}
	if c.ImageURL != "" {
		fmt.Fprintf(&b, `<img src="%s" alt="%s">`, html.EscapeString(c.ImageURL), html.EscapeString(altText(item)))
	}
	if c.Description != "" {
		fmt.Fprintf(&b, `<p class="description">%s</p>`, html.EscapeString(c.Description))
	}
	if body := strings.TrimSpace(c.Body); body != "" {
		b.WriteString(`<section class="body">`)
		if err := md.Convert([]byte(body), &b); err != nil {
			return "", fmt.Errorf("failed to convert body: %w", err)
		}
		b.WriteString("</section>")
	}
	if len(c.PlotHooks) > 0 {
		b.WriteString("<h2>Plot hooks</h2><ul>")
		for _, h := range c.PlotHooks {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(h))
		}
		b.WriteString("</ul>")
	}
	if item.Timestamp > 0 {
		ts := time.UnixMilli(item.Timestamp).UTC()
		fmt.Fprintf(&b, `<footer><time datetime="%s">%s</time></footer>`,
			ts.Format(time.RFC3339), ts.Format("2006-01-02 15:04"))
	}
	b.WriteString("</article>")

	return policy.Sanitize(b.String()), nil
}

func altText(item domain.HistoryItem) string {
	if item.Prompt != "" {
		return item.Prompt
	}
	if item.Content.Description != "" {
		return item.Content.Description
	}
	return string(item.Kind)
}
