package feed

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildRSSEscapesTitleAndDescription(t *testing.T) {
	out, err := BuildRSS(RSSSpec{
		Title:       "Ep1",
		Description: "<b>bold</b>",
		AudioURL:    "audio/ep1.wav",
		WorkflowID:  "wf1",
		Local:       true,
	})
	require.NoError(t, err)
	require.Contains(t, string(out), "<title>Ep1</title>")
	require.Contains(t, string(out), "&lt;b&gt;bold&lt;/b&gt;")
	require.NotContains(t, string(out), "<b>bold</b>")
}

func TestBuildRSSRoundTripsThroughXMLDecoder(t *testing.T) {
	out, err := BuildRSS(RSSSpec{
		Title:       `Title with "quotes" & ampersands`,
		Description: "A & B < C",
		AudioURL:    "https://example.com/ep1.mp3",
		WorkflowID:  "wf2",
		Local:       false,
	})
	require.NoError(t, err)

	var decoded rssFeed
	require.NoError(t, xml.Unmarshal(out, &decoded))
	require.Equal(t, `Title with "quotes" & ampersands`, decoded.Channel.Item.Title)
	require.Equal(t, "A & B < C", decoded.Channel.Item.Description)
	require.Equal(t, "audio/mpeg", decoded.Channel.Item.Enclosure.Type)
}

func TestBuildRSSLocalUsesWavMimeType(t *testing.T) {
	out, err := BuildRSS(RSSSpec{Title: "t", AudioURL: "a.wav", WorkflowID: "w", Local: true})
	require.NoError(t, err)
	require.Contains(t, string(out), `type="audio/wav"`)
}
