// Package content turns stored lesson text into displayable segments.
//
// Lesson bodies embed images with the marker [IMAGE: <url>], where the URL
// starts with http:// or https:// and runs up to the closing bracket. There is
// no escape syntax: marker-shaped text with a valid URL is always an image.
package content

import (
	"iter"
	"regexp"
	"strings"
)

type SegmentKind int

const (
	Text SegmentKind = iota
	Image
)

func (k SegmentKind) String() string {
	if k == Image {
		return "image"
	}
	return "text"
}

func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment is one renderable piece of a lesson body. Raw holds the exact
// source text the segment was cut from.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	URL  string      `json:"url,omitempty"`
	Raw  string      `json:"-"`
}

var markerPattern = regexp.MustCompile(`\[IMAGE:\s*(https?://[^\]]+)\]`)

// Render yields the segments of body in order. Empty text segments are
// skipped; image segments are always yielded. The sequence can be ranged
// over any number of times.
func Render(body string) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		pos := 0
		for _, m := range markerPattern.FindAllStringSubmatchIndex(body, -1) {
			if m[0] > pos {
				if !yield(textSegment(body[pos:m[0]])) {
					return
				}
			}
			img := Segment{Kind: Image, URL: body[m[2]:m[3]], Raw: body[m[0]:m[1]]}
			if !yield(img) {
				return
			}
			pos = m[1]
		}
		if pos < len(body) {
			yield(textSegment(body[pos:]))
		}
	}
}

func textSegment(s string) Segment {
	return Segment{Kind: Text, Text: s, Raw: s}
}

func Segments(body string) []Segment {
	segs := []Segment{}
	for s := range Render(body) {
		segs = append(segs, s)
	}
	return segs
}

// Reconstruct concatenates the raw source of segs.
func Reconstruct(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Raw)
	}
	return b.String()
}

func ImageURLs(body string) []string {
	var urls []string
	for s := range Render(body) {
		if s.Kind == Image {
			urls = append(urls, s.URL)
		}
	}
	return urls
}

func Marker(url string) string {
	return "[IMAGE: " + url + "]"
}
