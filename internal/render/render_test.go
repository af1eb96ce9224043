package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

func writingItem() domain.HistoryItem {
	return domain.HistoryItem{
		ID:   "01",
		Kind: domain.KindWriting,
		Content: domain.Content{
			Title:     "Moon & Sword",
			Pairings:  "General x Scholar",
			Traits:    []string{"stoic", "gentle"},
			Body:      "First line with *emphasis*.\n\nSecond paragraph.",
			PlotHooks: []string{"a letter arrives"},
		},
		Timestamp: 1700000000000,
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown(writingItem())

	assert.Contains(t, got, "# Moon & Sword\n")
	assert.Contains(t, got, "**General x Scholar**")
	assert.Contains(t, got, "stoic · gentle")
	assert.Contains(t, got, "First line with *emphasis*.")
	assert.Contains(t, got, "## Plot hooks\n\n- a letter arrives\n")
}

func TestMarkdownDrawing(t *testing.T) {
	got := Markdown(domain.HistoryItem{
		Kind:    domain.KindDrawing,
		Prompt:  "a garden at dusk",
		Content: domain.Content{ImageURL: "https://img.example.com/1.png", Description: "a garden at dusk"},
	})
	assert.Equal(t, "![a garden at dusk](https://img.example.com/1.png)\n\na garden at dusk\n", got)
}

func TestHTML(t *testing.T) {
	got, err := HTML(writingItem())
	require.NoError(t, err)

	assert.Contains(t, got, "<h1>Moon &amp; Sword</h1>")
	assert.Contains(t, got, "<em>emphasis</em>")
	assert.Contains(t, got, "<li>stoic</li>")
	assert.Contains(t, got, "<li>a letter arrives</li>")
	assert.Contains(t, got, `datetime="2023-11-14T22:13:20Z"`)
}

func TestHTMLSanitizesBody(t *testing.T) {
	item := domain.HistoryItem{
		Kind: domain.KindWriting,
		Content: domain.Content{
			Title: "<script>alert(1)</script>",
			Body:  "hello <script>alert(2)</script> <a href=\"javascript:alert(3)\">x</a>",
		},
	}

	got, err := HTML(item)
	require.NoError(t, err)
	assert.NotContains(t, got, "<script>")
	assert.NotContains(t, got, "javascript:")
	assert.Contains(t, got, "hello")
}

func TestHTMLKeepsDataURIImages(t *testing.T) {
	item := domain.HistoryItem{
		Kind:    domain.KindDrawing,
		Content: domain.Content{ImageURL: "data:image/png;base64,iVBORw0KGgo="},
	}

	got, err := HTML(item)
	require.NoError(t, err)
	assert.Contains(t, got, `src="data:image/png;base64,iVBORw0KGgo="`)
	assert.Contains(t, got, `alt="drawing"`)
}
