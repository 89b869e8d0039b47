package cache

import "fmt"

// Key semantics:
// - keySurfaces:          candidate connected surfaces (Set<deviceId>)
// - surfaceKey(deviceId): per-surface heartbeat key (String "1" with TTL)
// - keySurfaceNames:      deviceId -> display name (Hash)
//
// Preference records ("preview:prefs:<session>") are keyed by the prefs
// package itself; RedisStorage stores them under the keys it is given.

const (
	keySurfaces     = "preview:surfaces"       // Set<deviceId>
	keySurfaceFmt   = "preview:surface:%s"     // String "1" with TTL
	keySurfaceNames = "preview:surfaces:names" // Hash<deviceId -> name>
)

func surfaceKey(deviceID string) string { return fmt.Sprintf(keySurfaceFmt, deviceID) }
