package store

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"previewServer/backend/internal/story"
)

// StoryRecord is the persisted form of a named story snapshot. Slides are
// stored as a JSON column; the schema does not care about slide internals.
type StoryRecord struct {
	ID               uint   `gorm:"primaryKey"`
	Title            string `gorm:"uniqueIndex;size:255"`
	Slides           string `gorm:"type:longtext"`
	ActiveSlideIndex int
	UpdatedAt        time.Time
}

func (StoryRecord) TableName() string { return "stories" }

type StoryStore struct {
	db *gorm.DB
}

func NewStoryStore(db *gorm.DB) *StoryStore {
	return &StoryStore{db: db}
}

// Migrate creates or updates the stories table.
func (s *StoryStore) Migrate() error {
	return s.db.AutoMigrate(&StoryRecord{})
}

// Save upserts the snapshot under title.
func (s *StoryStore) Save(ctx context.Context, title string, snap story.Snapshot) error {
	slides, err := json.Marshal(snap.Slides)
	if err != nil {
		return err
	}
	rec := StoryRecord{
		Title:            title,
		Slides:           string(slides),
		ActiveSlideIndex: snap.ActiveSlideIndex,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{"slides", "active_slide_index", "updated_at"}),
	}).Create(&rec).Error
}

// Load returns the snapshot stored under title. gorm.ErrRecordNotFound
// passes through for missing titles.
func (s *StoryStore) Load(ctx context.Context, title string) (story.Snapshot, error) {
	var rec StoryRecord
	if err := s.db.WithContext(ctx).Where("title = ?", title).First(&rec).Error; err != nil {
		return story.Snapshot{}, err
	}
	var slides []story.Slide
	if err := json.Unmarshal([]byte(rec.Slides), &slides); err != nil {
		return story.Snapshot{}, err
	}
	return story.Snapshot{Slides: slides, ActiveSlideIndex: rec.ActiveSlideIndex}, nil
}
