package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"trip_hotels/internal/domain"
)

/********** upstream field paths (single source of truth) **********/

const (
	pathTitle     = "hotelBasicInfo.hotelName"
	pathAddress   = "hotelBasicInfo.hotelAddress"
	pathPrice     = "hotelBasicInfo.price"
	pathOrigPrice = "hotelBasicInfo.originPrice"
	pathImage     = "hotelBasicInfo.hotelImg"
	pathScore     = "commentInfo.commentScore"
	pathLatitude  = "positionInfo.mapCoordinate.0.latitude"
	pathLongitude = "positionInfo.mapCoordinate.0.longitude"
	pathCity      = "positionInfo.cityName"
	pathRoomType  = "roomInfo.physicalRoomName"
)

/********** tiny helpers **********/

// lookupAny: nested lookup with dot paths; numeric parts index into lists.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		switch obj := cur.(type) {
		case map[string]any:
			v, ok := obj[part]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(obj) {
				return nil
			}
			cur = obj[i]
		default:
			return nil
		}
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if s, ok := lookupAny(m, path).(string); ok {
		return s
	}
	return ""
}

func missing(path string) error {
	return fmt.Errorf("%w: %s", domain.ErrFieldMissing, path)
}

func invalid(path string, v any) error {
	return fmt.Errorf("%w: %s has unusable value %v", domain.ErrFieldMissing, path, v)
}

// requireStr: string at path; absent or non-string fails.
func requireStr(m map[string]any, path string) (string, error) {
	s, ok := lookupAny(m, path).(string)
	if !ok {
		return "", missing(path)
	}
	return s, nil
}

// requireFloat: number or numeric string at path.
func requireFloat(m map[string]any, path string) (float64, error) {
	v := lookupAny(m, path)
	if v == nil {
		return 0, missing(path)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, invalid(path, v)
	}
	return f, nil
}

// optionalPrice: missing, null and "" are nil; anything else must parse.
func optionalPrice(m map[string]any, path string) (*float64, error) {
	v := lookupAny(m, path)
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, invalid(path, v)
	}
	return &f, nil
}

// optionalScore: falsy values (null, "", 0, false) are nil.
func optionalScore(m map[string]any, path string) (*float64, error) {
	v := lookupAny(m, path)
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !t {
			return nil, nil
		}
		return nil, invalid(path, v)
	case float64:
		if t == 0 {
			return nil, nil
		}
	case string:
		if t == "" {
			return nil, nil
		}
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, invalid(path, v)
	}
	return &f, nil
}

// toFloat accepts finite decimal numbers only; NaN, Inf and hex floats
// can't be stored or served, so they count as unusable.
func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		s := strings.TrimSpace(t)
		if strings.ContainsAny(s, "xX") {
			return 0, false
		}
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

/********** hotel mapper **********/

// NormalizeHotel maps one upstream hotel entry into the canonical record.
// ImageRef is left nil; the pipeline fills it after the image fetch.
func NormalizeHotel(raw map[string]any) (domain.HotelRecord, error) {
	var h domain.HotelRecord
	var err error

	if h.Title, err = requireStr(raw, pathTitle); err != nil {
		return domain.HotelRecord{}, err
	}
	// a hotel without a name is not a record
	if strings.TrimSpace(h.Title) == "" {
		return domain.HotelRecord{}, missing(pathTitle)
	}
	if h.Rating, err = optionalScore(raw, pathScore); err != nil {
		return domain.HotelRecord{}, err
	}
	if h.Location, err = requireStr(raw, pathAddress); err != nil {
		return domain.HotelRecord{}, err
	}
	if h.Latitude, err = requireFloat(raw, pathLatitude); err != nil {
		return domain.HotelRecord{}, err
	}
	if h.Longitude, err = requireFloat(raw, pathLongitude); err != nil {
		return domain.HotelRecord{}, err
	}
	if h.RoomType, err = requireStr(raw, pathRoomType); err != nil {
		return domain.HotelRecord{}, err
	}
	if h.DiscountPrice, err = optionalPrice(raw, pathPrice); err != nil {
		return domain.HotelRecord{}, err
	}
	if h.BasePrice, err = optionalPrice(raw, pathOrigPrice); err != nil {
		return domain.HotelRecord{}, err
	}
	return h, nil
}

// HotelImageURL returns the entry's image URL, upgrading protocol-relative links.
func HotelImageURL(raw map[string]any) string {
	u := strings.TrimSpace(lookupStr(raw, pathImage))
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

// HotelCity returns the city name of an entry, or "".
func HotelCity(raw map[string]any) string {
	return strings.TrimSpace(lookupStr(raw, pathCity))
}
