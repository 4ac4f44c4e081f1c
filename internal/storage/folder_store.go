package storage

import (
	"encoding/json"
	"fmt"

	"canvas/internal/domain"
)

// Settings keys for the folder index. The forest (node arena) and the
// membership map are separate blobs but are always written in a single
// transaction so they cannot diverge after a successful save.
const (
	settingFolderForest     = "folders_forest"
	settingFolderMembership = "folders_documents"
)

// FolderStore persists the folder index in the settings store.
// It does not own document storage: folder records reference documents
// by id only.
type FolderStore struct {
	settings *SettingsStore
}

func NewFolderStore(settings *SettingsStore) *FolderStore {
	return &FolderStore{settings: settings}
}

// Load returns the whole folder forest with membership attached.
// An empty store yields an empty forest, not an error.
func (s *FolderStore) Load() ([]domain.Folder, error) {
	forestJSON, found, err := s.settings.Get(settingFolderForest)
	if err != nil {
		return nil, err
	}
	if !found || forestJSON == "" {
		return []domain.Folder{}, nil
	}

	var folders []domain.Folder
	if err := json.Unmarshal([]byte(forestJSON), &folders); err != nil {
		return nil, fmt.Errorf("decode folder forest: %w", err)
	}

	membership := map[string][]string{}
	memberJSON, found, err := s.settings.Get(settingFolderMembership)
	if err != nil {
		return nil, err
	}
	if found && memberJSON != "" {
		if err := json.Unmarshal([]byte(memberJSON), &membership); err != nil {
			return nil, fmt.Errorf("decode folder membership: %w", err)
		}
	}

	for i := range folders {
		folders[i].DocumentIDs = membership[folders[i].ID]
	}
	return folders, nil
}

// Save writes the forest and the membership map together.
func (s *FolderStore) Save(folders []domain.Folder) error {
	nodes := make([]domain.Folder, len(folders))
	membership := make(map[string][]string, len(folders))
	for i, f := range folders {
		node := f
		node.DocumentIDs = nil
		nodes[i] = node
		if len(f.DocumentIDs) > 0 {
			membership[f.ID] = f.DocumentIDs
		}
	}

	forestJSON, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("encode folder forest: %w", err)
	}
	memberJSON, err := json.Marshal(membership)
	if err != nil {
		return fmt.Errorf("encode folder membership: %w", err)
	}

	return s.settings.SetAll(map[string]string{
		settingFolderForest:     string(forestJSON),
		settingFolderMembership: string(memberJSON),
	})
}
