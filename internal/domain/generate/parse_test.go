package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuiz(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "bare array",
			content: `[{"question":"2+2?","options":["3","4"],"answer":1}]`,
			want:    1,
		},
		{
			name: "fenced with prose",
			content: "Here is your quiz:\n```json\n" +
				`[{"question":"Q1","options":["a","b","c"],"answer":2},{"question":"Q2","options":["a","b"],"answer":0}]` +
				"\n```\nGood luck!",
			want: 2,
		},
		{name: "answer out of range", content: `[{"question":"Q","options":["a","b"],"answer":2}]`, wantErr: true},
		{name: "too few options", content: `[{"question":"Q","options":["a"],"answer":0}]`, wantErr: true},
		{name: "empty", content: `[]`, wantErr: true},
		{name: "garbage", content: `no json here`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuiz(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestParseFlashcards(t *testing.T) {
	got, err := ParseFlashcards("```\n[{\"front\":\"ATP\",\"back\":\"energy currency\"}]\n```")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ATP", got[0].Front)

	_, err = ParseFlashcards(`[{"front":"x","back":""}]`)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseMindMap(t *testing.T) {
	root, err := ParseMindMap(`Sure! {"title":"Cells","children":[{"title":"Organelles"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "Cells", root.Title)
	require.Len(t, root.Children, 1)

	_, err = ParseMindMap(`{"children":[]}`)
	assert.ErrorIs(t, err, ErrParse)
}
