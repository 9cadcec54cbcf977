package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Batch is one persisted generation run. SegmentsSnapshot keeps the exact
// request segments (post-edit) as JSON, so a batch can be audited against the
// text it was generated from.
type Batch struct {
	Id               string `gorm:"primaryKey;type:varchar(36)"`
	StylePrompt      string
	ImageSize        string
	SegmentsSnapshot datatypes.JSON
	Images           []GeneratedImage `gorm:"foreignKey:BatchId;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time
}

type GeneratedImage struct {
	Id           uint   `gorm:"primaryKey;autoIncrement"`
	BatchId      string `gorm:"index;type:varchar(36)"`
	SegmentId    int
	ImageURL     string
	ThumbnailURL string
	Status       string `gorm:"type:varchar(16)"`
	Prompt       string
	CreatedAt    time.Time
}
