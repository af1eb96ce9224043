package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

func TestDecodeContent(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    domain.Content
		wantErr error
	}{
		{
			name: "plain object",
			raw:  `{"title":"Moon","body":"...","traits":["quiet","proud"]}`,
			want: domain.Content{Title: "Moon", Body: "...", Traits: []string{"quiet", "proud"}},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"pairings\":\"A x B\",\"description\":\"rain\"}\n```",
			want: domain.Content{Pairings: "A x B", Description: "rain"},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"title\":\"T\"}\n```",
			want: domain.Content{Title: "T"},
		},
		{
			name: "single string list",
			raw:  `{"title":"T","plotHooks":"one hook"}`,
			want: domain.Content{Title: "T", PlotHooks: []string{"one hook"}},
		},
		{name: "empty", raw: "  ", wantErr: ErrEmptyContent},
		{name: "empty object", raw: "{}", wantErr: ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeContent(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeContentMalformed(t *testing.T) {
	_, err := DecodeContent("{not json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyContent)
}

func TestJoinParts(t *testing.T) {
	c, err := DecodeContent(JoinParts([]string{`{"title":`, `"split"}`}))
	require.NoError(t, err)
	assert.Equal(t, "split", c.Title)
}

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AAA", DataURI("", "AAA"))
	assert.Equal(t, "data:image/jpeg;base64,BBB", DataURI("image/jpeg", "BBB"))
}
