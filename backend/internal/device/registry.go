package device

import "math"

// Category groups profiles by the kind of hardware they simulate.
type Category string

const (
	CategoryMobile  Category = "mobile"
	CategoryTablet  Category = "tablet"
	CategoryDesktop Category = "desktop"
)

// Profile describes one simulated device viewport. Profiles are fixed at
// process start and never mutated.
type Profile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Scale    float64  `json:"scale"`
	Category Category `json:"category"`
}

// DisplaySize is the effective rendered size of a profile.
type DisplaySize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// profiles is priority-ordered: smallest / most common device first.
// Downstream consumers rely on index-based identity, so the order is part
// of the contract and must not be reshuffled.
var profiles = []Profile{
	{ID: "iphone-se", Name: "iPhone SE", Width: 375, Height: 667, Scale: 2, Category: CategoryMobile},
	{ID: "iphone-14-pro", Name: "iPhone 14 Pro", Width: 393, Height: 852, Scale: 3, Category: CategoryMobile},
	{ID: "iphone-14-pro-max", Name: "iPhone 14 Pro Max", Width: 430, Height: 932, Scale: 3, Category: CategoryMobile},
	{ID: "pixel-7", Name: "Pixel 7", Width: 412, Height: 915, Scale: 2.625, Category: CategoryMobile},
	{ID: "ipad-mini", Name: "iPad Mini", Width: 744, Height: 1133, Scale: 2, Category: CategoryTablet},
	{ID: "ipad-air", Name: "iPad Air", Width: 820, Height: 1180, Scale: 2, Category: CategoryTablet},
	{ID: "ipad-pro-12-9", Name: "iPad Pro 12.9", Width: 1024, Height: 1366, Scale: 2, Category: CategoryTablet},
	{ID: "laptop", Name: "Laptop", Width: 1366, Height: 768, Scale: 1, Category: CategoryDesktop},
	{ID: "desktop-1080p", Name: "Desktop 1080p", Width: 1920, Height: 1080, Scale: 1, Category: CategoryDesktop},
}

var byID = func() map[string]Profile {
	m := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	return m
}()

// DeviceByID returns the profile for id.
func DeviceByID(id string) (Profile, bool) {
	p, ok := byID[id]
	return p, ok
}

// IsValidID reports whether id names a registered profile.
func IsValidID(id string) bool {
	_, ok := byID[id]
	return ok
}

// AllDeviceIDs returns every profile id in registry order.
func AllDeviceIDs() []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

// AllProfiles returns the full catalog in registry order.
func AllProfiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// DevicesByCategory returns the profiles in c, in registry order. Unknown
// categories yield an empty slice.
func DevicesByCategory(c Category) []Profile {
	out := []Profile{}
	for _, p := range profiles {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// GetDisplaySize computes the effective rendered size (width*scale,
// height*scale) of a profile.
func GetDisplaySize(p Profile) DisplaySize {
	return DisplaySize{
		Width:  int(math.Round(float64(p.Width) * p.Scale)),
		Height: int(math.Round(float64(p.Height) * p.Scale)),
	}
}
