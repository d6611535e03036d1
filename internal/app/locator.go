package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"trip_hotels/internal/domain"
)

const (
	DefaultStartMarker = `"hotelList":`
	DefaultEndMarker   = `"firstPageRequest":`
)

// MarkerLocator finds the listing payload between two textual markers.
type MarkerLocator struct {
	Start string
	End   string
}

func NewMarkerLocator(start, end string) MarkerLocator {
	if start == "" {
		start = DefaultStartMarker
	}
	if end == "" {
		end = DefaultEndMarker
	}
	return MarkerLocator{Start: start, End: end}
}

func (l MarkerLocator) Locate(html string) (map[string]any, error) {
	return LocatePayload(html, l.Start, l.End)
}

// LocatePayload cuts html from the first start marker up to the first end marker,
// drops one trailing comma and prepends "{" so the fragment decodes as an object.
// The end marker is searched in the whole document, not after the start marker.
func LocatePayload(html, startMarker, endMarker string) (map[string]any, error) {
	start := strings.Index(html, startMarker)
	if start < 0 {
		return nil, fmt.Errorf("%w: start marker %q", domain.ErrPayloadNotFound, startMarker)
	}
	end := strings.Index(html, endMarker)
	if end < 0 {
		return nil, fmt.Errorf("%w: end marker %q", domain.ErrPayloadNotFound, endMarker)
	}

	var fragment string
	if end > start {
		fragment = html[start:end]
	}
	fragment = "{" + strings.TrimSuffix(fragment, ",")

	var out map[string]any
	if err := json.Unmarshal([]byte(fragment), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return out, nil
}

// HotelList returns the raw hotel entries of a located payload.
func HotelList(payload map[string]any) (domain.Batch, error) {
	raw, ok := payload["hotelList"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: hotelList is %T", domain.ErrMalformedPayload, payload["hotelList"])
	}
	out := make(domain.Batch, 0, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: hotelList[%d] is %T", domain.ErrMalformedPayload, i, it)
		}
		out = append(out, m)
	}
	return out, nil
}
