package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	t.Run("nested object with braces in strings", func(t *testing.T) {
		page := `<script>var ytInitialPlayerResponse = {"a":{"b":"}{"},"c":"say \"{hi}\""};var other = {};</script>`
		got, err := extractJSONObject(page, playerResponseMarker)
		require.NoError(t, err)
		assert.Equal(t, `{"a":{"b":"}{"},"c":"say \"{hi}\""}`, string(got))
	})

	t.Run("escaped backslash before quote", func(t *testing.T) {
		page := `ytInitialPlayerResponse = {"path":"C:\\","x":1};`
		got, err := extractJSONObject(page, playerResponseMarker)
		require.NoError(t, err)
		assert.Equal(t, `{"path":"C:\\","x":1}`, string(got))
	})

	t.Run("missing marker", func(t *testing.T) {
		_, err := extractJSONObject("<html></html>", playerResponseMarker)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("unbalanced", func(t *testing.T) {
		_, err := extractJSONObject(`ytInitialPlayerResponse = {"a":{"b":1}`, playerResponseMarker)
		assert.ErrorIs(t, err, ErrParse)
	})
}

func TestChooseTrack(t *testing.T) {
	en := captionTrack{BaseURL: "/en", LanguageCode: "en"}
	enUS := captionTrack{BaseURL: "/en-US", LanguageCode: "en-US"}
	deAuto := captionTrack{BaseURL: "/de", LanguageCode: "de", Kind: "asr"}
	fr := captionTrack{BaseURL: "/fr", LanguageCode: "fr"}

	tests := []struct {
		name   string
		tracks []captionTrack
		lang   string
		want   string
		found  bool
	}{
		{name: "exact", tracks: []captionTrack{enUS, en}, lang: "en", want: "/en", found: true},
		{name: "exact case-insensitive", tracks: []captionTrack{en, enUS}, lang: "EN-us", want: "/en-US", found: true},
		{name: "prefix", tracks: []captionTrack{fr, enUS}, lang: "en", want: "/en-US", found: true},
		{name: "first manual", tracks: []captionTrack{deAuto, fr}, lang: "ru", want: "/fr", found: true},
		{name: "first any", tracks: []captionTrack{deAuto}, lang: "ru", want: "/de", found: true},
		{name: "none", tracks: nil, lang: "en", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chooseTrack(tt.tracks, tt.lang)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, got.BaseURL)
			}
		})
	}
}

func TestParseTimedText(t *testing.T) {
	data := []byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>` +
		`<text start="0.5" dur="2.1">Hello &amp;amp; welcome</text>` +
		`<text start="2.6" dur="1">   </text>` +
		`<text start="3.6" dur="1.5">it&amp;#39;s   a
		test</text></transcript>`)

	segments, err := parseTimedText(data)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Hello & welcome", segments[0].Text)
	assert.InDelta(t, 0.5, segments[0].Start, 1e-9)
	assert.InDelta(t, 2.1, segments[0].Duration, 1e-9)
	assert.Equal(t, "it's a test", segments[1].Text)
	assert.Equal(t, "Hello & welcome it's a test", JoinSegments(segments))
}

func TestParseTimedText_Invalid(t *testing.T) {
	_, err := parseTimedText([]byte("not xml"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Tom & Jerry", pageTitle(`<html><head><title>Tom &amp; Jerry - YouTube</title></head></html>`))
	assert.Equal(t, "", pageTitle(`<html></html>`))
}
