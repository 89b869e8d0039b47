package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
)

const keyPrefix = "preview:prefs:"

func prefsKey(session string) string { return keyPrefix + session }

// Store persists Preferences through a Storage backend, one record per
// session.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// envelope mirrors Preferences with pointer fields so Load and Import can
// tell "key missing" from "zero value".
type envelope struct {
	Enabled            *bool       `json:"enabled"`
	GridConfig         *GridConfig `json:"gridConfig"`
	EnabledDeviceTypes *[]string   `json:"enabledDeviceTypes"`
	DeviceOrder        *[]string   `json:"deviceOrder"`
	Version            *int        `json:"version"`
	LastUpdated        *int64      `json:"lastUpdated"`
}

func (env *envelope) toPreferences() (Preferences, bool) {
	if env.Enabled == nil || env.GridConfig == nil || env.EnabledDeviceTypes == nil || env.DeviceOrder == nil {
		return Preferences{}, false
	}
	p := Preferences{
		Enabled:            *env.Enabled,
		GridConfig:         *env.GridConfig,
		EnabledDeviceTypes: *env.EnabledDeviceTypes,
		DeviceOrder:        *env.DeviceOrder,
		Version:            CurrentVersion,
	}
	if env.Version != nil {
		p.Version = *env.Version
	}
	if env.LastUpdated != nil {
		p.LastUpdated = *env.LastUpdated
	}
	return p, true
}

// Load returns the stored preferences for session. Empty storage and bad
// stored data (broken JSON, missing required keys) both yield Defaults;
// only a failing backend surfaces as *StorageError.
func (s *Store) Load(ctx context.Context, session string) (Preferences, error) {
	raw, err := s.storage.Get(ctx, prefsKey(session))
	if errors.Is(err, ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Preferences{}, &StorageError{Op: "load", Err: err}
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		log.Printf("prefs: discarding corrupt record (session=%s): %v", session, err)
		return Defaults(), nil
	}
	p, ok := env.toPreferences()
	if !ok {
		log.Printf("prefs: discarding structurally invalid record (session=%s)", session)
		return Defaults(), nil
	}
	return p, nil
}

// Save writes p for session. Any backend or serialization failure comes
// back as *StorageError.
func (s *Store) Save(ctx context.Context, session string, p Preferences) error {
	b, err := json.Marshal(p)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	if err := s.storage.Set(ctx, prefsKey(session), string(b)); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

// Clear removes the persisted record for session.
func (s *Store) Clear(ctx context.Context, session string) error {
	if err := s.storage.Del(ctx, prefsKey(session)); err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}

// Export renders p as pretty-printed, human-diffable JSON.
func Export(p Preferences) (string, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", &StorageError{Op: "export", Err: err}
	}
	return string(b), nil
}

// Import parses an Export-shaped document. Unlike Load it is strict: bad
// JSON or a missing required key is an error, never a partial object.
func Import(doc string) (Preferences, error) {
	var env envelope
	if err := json.Unmarshal([]byte(doc), &env); err != nil {
		return Preferences{}, &StorageError{Op: "import", Err: err}
	}
	p, ok := env.toPreferences()
	if !ok {
		return Preferences{}, &StorageError{Op: "import", Err: errors.New("missing required keys")}
	}
	return p, nil
}
