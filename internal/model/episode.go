package model

import "time"

// Episode publication states.
const (
	EpisodeDraft     = "draft"
	EpisodePublished = "published"
	EpisodeArchived  = "archived"
)

// LocalFile is the bookkeeping block for an episode's uploaded audio.
// Exists stays false after a soft delete even though the row keeps the
// historical filename and size.
type LocalFile struct {
	Filename     string     `json:"filename,omitempty"`
	Path         string     `json:"path,omitempty"`
	OriginalName string     `json:"originalName,omitempty"`
	Size         int64      `json:"size,omitempty"`
	MimeType     string     `json:"mimeType,omitempty"`
	UploadedAt   *time.Time `json:"uploadedAt,omitempty"`
	Exists       bool       `json:"exists"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// AirtimeLink records the manual Airtime bookkeeping for an episode. The
// Airtime admin API is not reachable from this system, so these fields are
// local annotations maintained by the streaming endpoints, not the result
// of real remote calls.
type AirtimeLink struct {
	FileID       *string    `json:"fileId"`
	Uploaded     bool       `json:"uploaded"`
	UploadedAt   *time.Time `json:"uploadedAt,omitempty"`
	UploadedBy   *uint64    `json:"uploadedBy,omitempty"`
	ScheduleID   *string    `json:"scheduleId"`
	ScheduledAt  *time.Time `json:"scheduledAt,omitempty"`
	LastError    *string    `json:"lastError,omitempty"`
	UploadFailed bool       `json:"uploadFailed"`
}

// EpisodeStats carries play/like counters.
type EpisodeStats struct {
	Plays int64 `json:"plays"`
	Likes int64 `json:"likes"`
}

// Episode mirrors the `episodes` table. Every episode belongs to exactly
// one show; creating or deleting one moves the parent show's episode
// counter in the same transaction.
type Episode struct {
	ID            uint64       `json:"id"`
	ShowID        uint64       `json:"showId"`
	Title         string       `json:"title"`
	EpisodeNumber *int         `json:"episodeNumber,omitempty"`
	Description   string       `json:"description"`
	Image         Image        `json:"image"`
	AirDate       time.Time    `json:"airDate"`
	Genres        []string     `json:"genres"`
	MixcloudURL   string       `json:"mixcloudUrl"`
	Status        string       `json:"status"`
	Featured      bool         `json:"featured"`
	Stats         EpisodeStats `json:"stats"`
	LocalFile     LocalFile    `json:"localFile"`
	Airtime       AirtimeLink  `json:"airtime"`
	CreatedBy     uint64       `json:"createdBy"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
