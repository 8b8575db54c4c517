package domain

import "fmt"

// TargetKey identifies a registered location. Both parts must match a
// directory record; a partial match is not a match.
type TargetKey struct {
	PrimaryKey   string `json:"primary_key"`
	SecondaryKey string `json:"secondary_key"`
}

func (k TargetKey) String() string {
	return fmt.Sprintf("%s/%s", k.PrimaryKey, k.SecondaryKey)
}

// DirectoryRecord is the raw answer of the directory. Coordinates come either
// as a "lat,lng" string or as a structured pair; Lat/Lng win when both are set.
type DirectoryRecord struct {
	PrimaryKey   string            `json:"primary_key"`
	SecondaryKey string            `json:"secondary_key"`
	Coordinates  string            `json:"coordinates,omitempty"`
	Lat          *float64          `json:"lat,omitempty"`
	Lng          *float64          `json:"lng,omitempty"`
	DisplayName  string            `json:"display_name"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

func (r DirectoryRecord) Key() TargetKey {
	return TargetKey{PrimaryKey: r.PrimaryKey, SecondaryKey: r.SecondaryKey}
}

// Target is a registered location with validated coordinates.
type Target struct {
	Key         TargetKey         `json:"key"`
	Coordinates Coordinate        `json:"coordinates"`
	DisplayName string            `json:"display_name"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
