// Package feed implements the Bundle & Feed Writer: pure RSS/bundle
// construction over (title, description, script, audio path). XML
// marshaling goes through encoding/xml so metacharacters in
// caller-supplied title/description are always escaped — this is the
// structural fix for the reference implementation's unescaped-XML bug.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

// rssFeed mirrors an RSS 2.0 document with the itunes namespace; struct
// tags do all the escaping work.
type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ItunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string  `xml:"title"`
	Item  rssItem `xml:"item"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Description    string       `xml:"description"`
	PubDate        string       `xml:"pubDate"`
	GUID           rssGUID      `xml:"guid"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	ItunesDuration string       `xml:"itunes:duration"`
	ItunesExplicit string       `xml:"itunes:explicit"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length string `xml:"length,attr"`
}

// itunesDurationPlaceholder matches spec's fixed placeholder value;
// actual episode duration is not tracked at this layer.
const itunesDurationPlaceholder = "10:00"

// RSSSpec is the input to BuildRSS.
type RSSSpec struct {
	Title       string
	Description string
	AudioURL    string // absolute URL, or a relative path for bundles
	WorkflowID  string
	Local       bool // true => audio/wav relative enclosure, false => audio/mpeg
}

// BuildRSS renders one RSS 2.0 document with a single <item>, per
// spec's formatting contract (version 2.0, itunes namespace, RFC-1123
// UTC pubDate, non-permalink GUID).
func BuildRSS(spec RSSSpec) ([]byte, error) {
	mimeType := "audio/mpeg"
	if spec.Local {
		mimeType = "audio/wav"
	}

	feed := rssFeed{
		Version:  "2.0",
		ItunesNS: "http://www.itunes.com/dtds/podcast-1.0.dtd",
		Channel: rssChannel{
			Title: spec.Title,
			Item: rssItem{
				Title:       spec.Title,
				Description: spec.Description,
				PubDate:     time.Now().UTC().Format(time.RFC1123),
				GUID: rssGUID{
					IsPermaLink: "false",
					Value:       fmt.Sprintf("%s-%d", spec.WorkflowID, time.Now().UTC().UnixNano()),
				},
				Enclosure: rssEnclosure{
					URL:    spec.AudioURL,
					Type:   mimeType,
					Length: "0",
				},
				ItunesDuration: itunesDurationPlaceholder,
				ItunesExplicit: "false",
			},
		},
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rss: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
