package prefs

import "time"

// CurrentVersion is the preference schema version written by this build.
const CurrentVersion = 1

// GridConfig controls how preview surfaces are laid out in the editor.
type GridConfig struct {
	Columns int `json:"columns"`
	Gap     int `json:"gap"`
}

// Preferences are the persisted multi-device-preview choices of one
// session. Mutated only through Store.Save / Migrate, destroyed only
// through Store.Clear.
type Preferences struct {
	Enabled            bool       `json:"enabled"`
	GridConfig         GridConfig `json:"gridConfig"`
	EnabledDeviceTypes []string   `json:"enabledDeviceTypes"`
	DeviceOrder        []string   `json:"deviceOrder"`
	Version            int        `json:"version"`
	LastUpdated        int64      `json:"lastUpdated"` // unix milliseconds
}

// Defaults is what Load returns for empty or unreadable storage.
func Defaults() Preferences {
	return Preferences{
		Enabled:            true,
		GridConfig:         GridConfig{Columns: 2, Gap: 16},
		EnabledDeviceTypes: []string{"iphone-se", "iphone-14-pro", "ipad-air"},
		DeviceOrder:        []string{"iphone-se", "iphone-14-pro", "ipad-air"},
		Version:            CurrentVersion,
		LastUpdated:        0,
	}
}

// Migrate brings old up to targetVersion. It refreshes LastUpdated and the
// version stamp; every other field is carried verbatim so a migration can
// never drop data it does not understand.
func Migrate(old Preferences, targetVersion int) Preferences {
	out := old
	out.Version = targetVersion
	out.LastUpdated = time.Now().UnixMilli()
	return out
}
