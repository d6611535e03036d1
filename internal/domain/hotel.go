package domain

import "strings"

// HotelRecord is the canonical, persisted shape of one hotel listing.
// Pointer fields are nullable columns.
type HotelRecord struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Rating        *float64 `json:"rating"`
	Location      string   `json:"location"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	RoomType      string   `json:"room_type"`
	DiscountPrice *float64 `json:"discount_price"`
	BasePrice     *float64 `json:"base_price"`
	ImageRef      *string  `json:"image_ref"`
}

// Batch is one listing page worth of raw upstream hotel entries.
type Batch []map[string]any

// Skip explains why a raw entry of a batch was not persisted.
type Skip struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

type IngestResult struct {
	Partition string       `json:"partition"`
	Schema    SchemaStatus `json:"schema"`
	Attempted int          `json:"attempted"`
	Persisted int          `json:"persisted"`
	Skipped   []Skip       `json:"skipped"`
}

type SchemaStatus string

const (
	SchemaCreated       SchemaStatus = "created"
	SchemaAlreadyExists SchemaStatus = "already_exists"
)

// Sanitize lowercases s and replaces spaces and hyphens with underscores.
// It is used for both partition keys and image file names.
func Sanitize(s string) string {
	return strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(s))
}

// PartitionKey derives the storage partition (table) key for a city name.
func PartitionKey(city string) string { return Sanitize(city) }
