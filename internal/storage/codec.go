package storage

import (
	"encoding/json"
	"fmt"

	"canvas/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Document codec — JSON serialization for canvas records
// ─────────────────────────────────────────────────────────────
//
// Decode is lenient by design: unknown fields are ignored and missing
// optional fields take their zero defaults, so records written by older
// or newer builds still load. Only malformed JSON is treated as corrupt.

// EncodeDocument serializes a document to its on-disk record form.
// The caller's document is never modified; a zero schema version is
// stamped onto the record only.
func EncodeDocument(doc *domain.Document) ([]byte, error) {
	record := *doc
	if record.SchemaVersion == 0 {
		record.SchemaVersion = domain.CurrentSchemaVersion
	}
	data, err := json.MarshalIndent(&record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses record bytes back into a document.
// Returns ErrCorrupt (wrapped) if the bytes are not a valid record.
func DecodeDocument(data []byte) (*domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: record has no id", ErrCorrupt)
	}
	if doc.SchemaVersion == 0 {
		doc.SchemaVersion = domain.CurrentSchemaVersion
	}
	if doc.Elements == nil {
		doc.Elements = []domain.Element{}
	}
	return &doc, nil
}
