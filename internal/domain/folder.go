package domain

import "time"

// Folder is a user-organizational node. Folders reference documents by id
// only; deleting a folder never deletes the documents it lists.
//
// The forest is stored as a flat arena: every folder carries its parent id
// and an ordered list of child ids instead of embedded child objects, so
// "does this id exist" is a map lookup and cycles cannot be aliased in.
type Folder struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ParentID     *string   `json:"parentId,omitempty"` // nil = root
	SubfolderIDs []string  `json:"subfolderIds,omitempty"`
	DocumentIDs  []string  `json:"documentIds,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsRoot reports whether the folder sits at the top level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// HasDocument reports membership of a document id.
func (f *Folder) HasDocument(documentID string) bool {
	for _, id := range f.DocumentIDs {
		if id == documentID {
			return true
		}
	}
	return false
}
