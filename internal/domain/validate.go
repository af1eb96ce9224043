package domain

import "strings"

// Validation messages shown to the user as-is.
const (
	MsgWritingInputRequired = "enter a story description or select at least one keyword"
	MsgDrawingInputRequired = "describe the scene or select at least one visual parameter"
	MsgUnknownKind          = "unknown creation kind"
)

// ValidateRequest checks that the active kind has the input it needs.
// Writing and drawing need free text or at least one facet of their own
// kind; inspiration needs nothing.
func ValidateRequest(kind CreationKind, prompt string, keywords, imageKeywords Facets) error {
	hasText := strings.TrimSpace(prompt) != ""
	switch kind {
	case KindWriting:
		if !hasText && !keywords.HasAny() {
			return NewValidationError("prompt", MsgWritingInputRequired)
		}
	case KindDrawing:
		if !hasText && !imageKeywords.HasAny() {
			return NewValidationError("prompt", MsgDrawingInputRequired)
		}
	case KindInspiration:
	default:
		return NewValidationError("type", MsgUnknownKind)
	}
	return nil
}
