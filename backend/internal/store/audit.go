package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

// CycleRecord is one broadcast cycle's outcome as written to the audit
// table.
type CycleRecord struct {
	Generation       uint64
	Outcome          string // "ALL_ACKED" or "TIMED_OUT"
	DeviceCount      int
	AckedCount       int
	MissingDeviceIDs []string
	ElapsedMS        int64
	OccurredAt       time.Time
}

// BroadcastAuditStore appends broadcast outcomes to MySQL over plain
// database/sql.
type BroadcastAuditStore struct {
	db *sql.DB
}

func NewBroadcastAuditStore(db *sql.DB) *BroadcastAuditStore {
	return &BroadcastAuditStore{db: db}
}

func (s *BroadcastAuditStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS broadcast_cycles (
			generation BIGINT UNSIGNED NOT NULL,
			outcome VARCHAR(16) NOT NULL,
			device_count INT NOT NULL,
			acked_count INT NOT NULL,
			missing_device_ids TEXT NOT NULL,
			elapsed_ms BIGINT NOT NULL,
			occurred_at DATETIME NOT NULL,
			PRIMARY KEY (generation)
		)`)
	return err
}

// SaveCycle inserts one cycle record. A duplicate generation (a retried
// write of the same outcome) is treated as already recorded.
func (s *BroadcastAuditStore) SaveCycle(ctx context.Context, rec CycleRecord) error {
	missing, err := json.Marshal(rec.MissingDeviceIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO broadcast_cycles
		(generation, outcome, device_count, acked_count, missing_device_ids, elapsed_ms, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Generation,
		rec.Outcome,
		rec.DeviceCount,
		rec.AckedCount,
		string(missing),
		rec.ElapsedMS,
		rec.OccurredAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return nil
		}
		return err
	}
	return nil
}
