package domain

import "time"

// CurrentSchemaVersion is stamped onto every document written by this build.
// Decoders treat a missing version as 1.
const CurrentSchemaVersion = 1

type ElementType string

const (
	ElementTypeText        ElementType = "text"
	ElementTypeHeaderImage ElementType = "headerImage"
	ElementTypeScripture   ElementType = "scripture"
	ElementTypeQuote       ElementType = "quote"
)

// Element is one ordered content block of a document. For header-image
// elements Content holds the image filename, not binary data.
type Element struct {
	Type        ElementType `json:"type"`
	Content     string      `json:"content"`
	Placeholder string      `json:"placeholder,omitempty"`
}

// Series is an optional named grouping a document belongs to.
type Series struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Variation is an alternate version of a document, optionally carrying
// where and when it was presented. Opaque to storage and search except
// for round-tripping.
type Variation struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	DatePresented *time.Time `json:"datePresented,omitempty"`
	Location      string     `json:"location,omitempty"`
}

type MarkerType string

const (
	MarkerTypeBookmark  MarkerType = "bookmark"
	MarkerTypeHighlight MarkerType = "highlight"
)

// Marker is a tagged annotation anchored to an element position.
type Marker struct {
	Type         MarkerType `json:"type"`
	ElementIndex int        `json:"elementIndex"`
	Label        string     `json:"label,omitempty"`
}

// Document is the unit of persistence: one record on disk, one cache entry.
type Document struct {
	ID            string `json:"id"`
	SchemaVersion int    `json:"schemaVersion,omitempty"`

	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Elements []Element `json:"elements"`

	Series     *Series     `json:"series,omitempty"`
	Variations []Variation `json:"variations,omitempty"`
	Markers    []Marker    `json:"markers,omitempty"`

	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`

	// Presentation flags owned by the UI, carried through persistence.
	IsHeaderExpanded  bool `json:"isHeaderExpanded"`
	IsSubtitleVisible bool `json:"isSubtitleVisible"`
}

// HeaderImageElement returns the first header-image element with a
// non-empty filename, or nil.
func (d *Document) HeaderImageElement() *Element {
	for i := range d.Elements {
		if d.Elements[i].Type == ElementTypeHeaderImage && d.Elements[i].Content != "" {
			return &d.Elements[i]
		}
	}
	return nil
}
