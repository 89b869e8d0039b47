package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// PresenceCache tracks which preview surfaces are alive. A surface is
// alive while its heartbeat key has not expired; the candidate set may
// briefly contain dead surfaces, which AliveDevices filters out.
type PresenceCache interface {
	AddDevice(ctx context.Context, deviceID, name string, ttl time.Duration) error
	RemoveDevice(ctx context.Context, deviceID string) error
	AliveDevices(ctx context.Context) ([]PresenceDevice, error)
}

type PresenceDevice struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
}

type redisPresence struct {
	rdb *redis.Client
}

func NewRedisPresence(rdb *redis.Client) PresenceCache {
	return &redisPresence{rdb: rdb}
}

func (p *redisPresence) AddDevice(ctx context.Context, deviceID, name string, ttl time.Duration) error {
	pipe := p.rdb.Pipeline()
	pipe.SAdd(ctx, keySurfaces, deviceID)
	pipe.Set(ctx, surfaceKey(deviceID), "1", ttl)
	pipe.HSet(ctx, keySurfaceNames, deviceID, name)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *redisPresence) RemoveDevice(ctx context.Context, deviceID string) error {
	pipe := p.rdb.Pipeline()
	pipe.SRem(ctx, keySurfaces, deviceID)
	pipe.Del(ctx, surfaceKey(deviceID))
	pipe.HDel(ctx, keySurfaceNames, deviceID)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *redisPresence) AliveDevices(ctx context.Context) ([]PresenceDevice, error) {
	ids, err := p.rdb.SMembers(ctx, keySurfaces).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// Heartbeat keys still present are the alive ones.
	existsCmds := make([]*redis.IntCmd, 0, len(ids))
	pipe := p.rdb.Pipeline()
	for _, id := range ids {
		existsCmds = append(existsCmds, pipe.Exists(ctx, surfaceKey(id)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	alive := make([]string, 0, len(ids))
	for i, cmd := range existsCmds {
		if cmd.Val() == 1 {
			alive = append(alive, ids[i])
		}
	}
	if len(alive) == 0 {
		return nil, nil
	}

	names, err := p.rdb.HMGet(ctx, keySurfaceNames, alive...).Result()
	if err != nil {
		return nil, err
	}
	devices := make([]PresenceDevice, 0, len(alive))
	for i, v := range names {
		name := ""
		if v != nil {
			name, _ = v.(string)
		}
		devices = append(devices, PresenceDevice{DeviceID: alive[i], Name: name})
	}
	return devices, nil
}
