package provider

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

const (
	WritingSystem = "You are Wenmo, a silver-haired author of romance fiction between men. " +
		"Your prose is tender, vivid and emotionally charged. Characters grow, plots flow naturally, " +
		"feelings are suggested rather than spelled out. Always answer with a single JSON object."

	InspirationSystem = "You are a spark of inspiration for romance fiction between men. " +
		"Offer short, striking ideas and always answer with a single JSON object."

	InspirationPrompt = "Give me one writing prompt: a contrasting character pairing (pairings), " +
		"a dramatic love-triangle or atmosphere description (description), " +
		"and a list of character and mood tags (traits)."
)

type facetDefault struct {
	key   string
	label string
	def   string
}

var writingFacets = []facetDefault{
	{"seme", "Top", "strong and protective"},
	{"uke", "Bottom", "beautiful and gentle"},
	{"era", "Era", "contemporary city"},
	{"relationship", "Relationship", "bound by fate"},
	{"plot", "Plot", "healing"},
	{"length", "Length", "short story"},
}

var drawingFacets = []facetDefault{
	{"semeFeature", "", "elegant"},
	{"ukeFeature", "", "beautiful"},
	{"composition", "Composition", "dynamic interactive pose"},
	{"lighting", "Lighting", "soft cinematic lighting"},
	{"colorScheme", "Colors", "lavender and mint"},
	{"scene", "", "dreamy setting"},
	{"timeOfDay", "", "golden hour"},
	{"atmosphere", "Atmosphere", "romantic and dreamy"},
	{"elements", "Elements", "drifting petals, soft sparkles"},
}

// WritingPrompt renders the user message for a written piece. Missing facets
// fall back to their defaults.
func WritingPrompt(topic string, style domain.Style, keywords domain.Facets) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "no topic given, follow your own aesthetic imagination"
	}
	if style == "" {
		style = domain.StyleModern
	}

	var b strings.Builder
	b.WriteString("Write a romance piece and return JSON with the fields:\n")
	b.WriteString(`  "title": a beautiful title` + "\n")
	b.WriteString(`  "body": an excerpt of 500 to 800 words` + "\n")
	b.WriteString(`  "pairings": the couple and how they relate` + "\n")
	b.WriteString(`  "plotHooks": an array of 3 plot hooks` + "\n")
	b.WriteString(`  "traits": an array of character and mood tags` + "\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Style: %s\n", style)
	for _, f := range writingFacets {
		fmt.Fprintf(&b, "%s: %s\n", f.label, keywords.Get(f.key, f.def))
	}
	return b.String()
}

// DrawingPrompt renders the visual description sent to image models.
func DrawingPrompt(context string, keywords domain.Facets) string {
	get := func(i int) string {
		f := drawingFacets[i]
		return keywords.Get(f.key, f.def)
	}

	var b strings.Builder
	b.WriteString("Aesthetic romance illustration. ")
	fmt.Fprintf(&b, "Characters: %s seme and %s uke. ", get(0), get(1))
	fmt.Fprintf(&b, "Composition: %s. ", get(2))
	fmt.Fprintf(&b, "Lighting: %s. ", get(3))
	fmt.Fprintf(&b, "Colors: %s. ", get(4))
	fmt.Fprintf(&b, "Scene: %s at %s. ", get(5), get(6))
	fmt.Fprintf(&b, "Atmosphere: %s. ", get(7))
	fmt.Fprintf(&b, "Elements: %s. ", get(8))
	if c := strings.TrimSpace(context); c != "" {
		fmt.Fprintf(&b, "Context: %s. ", c)
	}
	b.WriteString("Style: masterpiece, delicate line art, lush details, emotionally charged gaze.")
	return b.String()
}
