package store

import "taskdeck/internal/storage"

// SettingsPatch carries partial updates for the settings draft. Nil fields
// are left untouched.
type SettingsPatch struct {
	APIKey *string
	Theme  *Theme
}

// SettingsStore holds the committed settings and an independent working
// draft. Edits accumulate in the draft and reach the committed copy only
// through Save; the committed copy alone is persisted.
type SettingsStore struct {
	adapter  storage.Adapter
	settings Settings
	draft    Settings
}

// NewSettingsStore hydrates a settings store from the adapter, starting the
// draft synchronized with the committed copy.
func NewSettingsStore(a storage.Adapter) (*SettingsStore, error) {
	s := &SettingsStore{adapter: a, settings: DefaultSettings()}
	ok, err := a.Load(storage.NamespaceSettings, &s.settings)
	if err != nil {
		return nil, err
	}
	if ok && s.settings.Theme == "" {
		s.settings.Theme = ThemeSystem
	}
	s.draft = s.settings
	return s, nil
}

// UpdateDraft merges the patch into the draft only.
func (s *SettingsStore) UpdateDraft(patch SettingsPatch) {
	if patch.APIKey != nil {
		s.draft.APIKey = *patch.APIKey
	}
	if patch.Theme != nil {
		s.draft.Theme = *patch.Theme
	}
}

// Save copies the draft over the committed settings and persists them. On a
// persistence failure the committed copy is unchanged.
func (s *SettingsStore) Save() error {
	if err := s.adapter.SaveAll(storage.NamespaceSettings, s.draft); err != nil {
		return err
	}
	s.settings = s.draft
	return nil
}

// Revert copies the committed settings back over the draft, discarding
// unsaved edits. Callers invoke this when entering the settings view so the
// draft starts synchronized.
func (s *SettingsStore) Revert() {
	s.draft = s.settings
}

// ResetToDefaults restores and persists the factory settings. The draft is
// left alone; callers re-synchronize it with a subsequent Revert.
func (s *SettingsStore) ResetToDefaults() error {
	defaults := DefaultSettings()
	if err := s.adapter.SaveAll(storage.NamespaceSettings, defaults); err != nil {
		return err
	}
	s.settings = defaults
	return nil
}

// HasChanges reports whether the draft differs from the committed settings.
// It is a structural comparison computed per call, never cached.
func (s *SettingsStore) HasChanges() bool {
	return s.draft != s.settings
}

func (s *SettingsStore) Settings() Settings { return s.settings }
func (s *SettingsStore) Draft() Settings    { return s.draft }
