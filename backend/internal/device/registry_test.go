package device

import (
	"reflect"
	"testing"
)

func TestDeviceByID(t *testing.T) {
	p, ok := DeviceByID("iphone-se")
	if !ok {
		t.Fatal("DeviceByID(iphone-se) not found")
	}
	if p.Name != "iPhone SE" || p.Category != CategoryMobile {
		t.Fatalf("DeviceByID(iphone-se) = %+v", p)
	}

	if _, ok := DeviceByID("walkie-talkie"); ok {
		t.Fatal("DeviceByID(walkie-talkie) = found, want not found")
	}
}

func TestOrderingIsStable(t *testing.T) {
	first := AllDeviceIDs()
	second := AllDeviceIDs()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("AllDeviceIDs() unstable: %v vs %v", first, second)
	}
	if first[0] != "iphone-se" {
		t.Fatalf("AllDeviceIDs()[0] = %q, want the smallest device first", first[0])
	}
	if len(first) != len(AllProfiles()) {
		t.Fatalf("id count %d != profile count %d", len(first), len(AllProfiles()))
	}
}

func TestDevicesByCategory(t *testing.T) {
	tablets := DevicesByCategory(CategoryTablet)
	if len(tablets) == 0 {
		t.Fatal("DevicesByCategory(tablet) is empty")
	}
	for _, p := range tablets {
		if p.Category != CategoryTablet {
			t.Fatalf("tablet query returned %s (%s)", p.ID, p.Category)
		}
	}

	if got := DevicesByCategory("submarine"); len(got) != 0 {
		t.Fatalf("DevicesByCategory(submarine) = %v, want empty", got)
	}
}

func TestGetDisplaySize(t *testing.T) {
	p, _ := DeviceByID("iphone-14-pro")
	size := GetDisplaySize(p)
	if size.Width != 1179 || size.Height != 2556 {
		t.Fatalf("GetDisplaySize(iphone-14-pro) = %+v, want 1179x2556", size)
	}

	pixel, _ := DeviceByID("pixel-7")
	size = GetDisplaySize(pixel)
	// 412 * 2.625 = 1081.5, rounded.
	if size.Width != 1082 {
		t.Fatalf("GetDisplaySize(pixel-7).Width = %d, want 1082", size.Width)
	}
}
