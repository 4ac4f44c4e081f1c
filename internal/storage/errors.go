package storage

import "errors"

// Record extension for on-disk documents.
const RecordExt = ".canvas"

// Name of the per-document asset subdirectory holding images.
const imagesDirName = "Images"

var (
	// ErrNotFound means no record exists for the requested id.
	ErrNotFound = errors.New("document not found")

	// ErrCorrupt means a record exists but its bytes failed to decode.
	ErrCorrupt = errors.New("document record corrupted")

	// ErrFolderNotFound means a folder id did not resolve in the index.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrImageUnavailable means a header-image asset is missing or
	// undecodable. Always absorbed by the loader, never surfaced.
	ErrImageUnavailable = errors.New("header image unavailable")
)
