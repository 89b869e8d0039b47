package cache

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379", DB: 9})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("skip: redis not available: %v", err)
	}
	t.Cleanup(func() {
		_ = rdb.FlushDB(context.Background()).Err()
		_ = rdb.Close()
	})
	return rdb
}

func TestPresenceAddAndAlive(t *testing.T) {
	rdb := testClient(t)
	p := NewRedisPresence(rdb)
	ctx := context.Background()

	if err := p.AddDevice(ctx, "iphone-se", "iPhone SE", 10*time.Second); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	if err := p.AddDevice(ctx, "ipad-air", "iPad Air", 10*time.Second); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}

	devices, err := p.AliveDevices(ctx)
	if err != nil {
		t.Fatalf("AliveDevices() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("AliveDevices() = %v, want 2 devices", devices)
	}
	names := map[string]string{}
	for _, d := range devices {
		names[d.DeviceID] = d.Name
	}
	if names["iphone-se"] != "iPhone SE" {
		t.Fatalf("name for iphone-se = %q, want %q", names["iphone-se"], "iPhone SE")
	}
}

func TestPresenceExpiredHeartbeatFiltered(t *testing.T) {
	rdb := testClient(t)
	p := NewRedisPresence(rdb)
	ctx := context.Background()

	if err := p.AddDevice(ctx, "laptop", "Laptop", 50*time.Millisecond); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	time.Sleep(120 * time.Millisecond)

	devices, err := p.AliveDevices(ctx)
	if err != nil {
		t.Fatalf("AliveDevices() error = %v", err)
	}
	if len(devices) != 0 {
		t.Fatalf("AliveDevices() = %v after heartbeat expiry, want none", devices)
	}
}

func TestPresenceRemoveDevice(t *testing.T) {
	rdb := testClient(t)
	p := NewRedisPresence(rdb)
	ctx := context.Background()

	if err := p.AddDevice(ctx, "pixel-7", "Pixel 7", 10*time.Second); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	if err := p.RemoveDevice(ctx, "pixel-7"); err != nil {
		t.Fatalf("RemoveDevice() error = %v", err)
	}
	devices, err := p.AliveDevices(ctx)
	if err != nil {
		t.Fatalf("AliveDevices() error = %v", err)
	}
	if len(devices) != 0 {
		t.Fatalf("AliveDevices() = %v after remove, want none", devices)
	}
}

func TestRedisStorageRoundTrip(t *testing.T) {
	rdb := testClient(t)
	s := NewRedisStorage(rdb)
	ctx := context.Background()

	if err := s.Set(ctx, "preview:prefs:test", `{"enabled":true}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "preview:prefs:test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != `{"enabled":true}` {
		t.Fatalf("Get() = %q", got)
	}

	if err := s.Del(ctx, "preview:prefs:test"); err != nil {
		t.Fatalf("Del() error = %v", err)
	}
	if _, err := s.Get(ctx, "preview:prefs:test"); err == nil {
		t.Fatal("Get() after Del succeeded, want ErrNotFound")
	}
}
