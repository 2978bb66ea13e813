package model

import "time"

// Moderation states for an artist-submitted show. requestStatus is tracked
// independently of the operational status below: a rejected show stays
// inactive, and approval is what flips a show to active.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// Operational visibility states for a show.
const (
	ShowActive   = "active"
	ShowInactive = "inactive"
	ShowArchived = "archived"
)

// ArtistProfile is the embedded presenter block of a show.
type ArtistProfile struct {
	Name        string      `json:"name"`
	Bio         string      `json:"bio"`
	Email       string      `json:"email"`
	Photo       *string     `json:"photo,omitempty"`
	SocialLinks SocialLinks `json:"socialLinks"`
}

// SocialLinks holds the optional external profiles of a presenter.
type SocialLinks struct {
	Instagram  *string `json:"instagram,omitempty"`
	Facebook   *string `json:"facebook,omitempty"`
	Website    *string `json:"website,omitempty"`
	Soundcloud *string `json:"soundcloud,omitempty"`
	Mixcloud   *string `json:"mixcloud,omitempty"`
}

// Image is a stored cover image reference.
type Image struct {
	URL string  `json:"url"`
	Alt *string `json:"alt,omitempty"`
}

// Schedule is the broadcast slot hint supplied by the artist. It is
// informational only; actual scheduling happens in Airtime.
type Schedule struct {
	DayOfWeek string `json:"dayOfWeek,omitempty"`
	TimeSlot  string `json:"timeSlot,omitempty"`
	Frequency string `json:"frequency,omitempty"` // weekly, biweekly, monthly, irregular
}

// ShowStats carries denormalized counters kept by the episode repository.
type ShowStats struct {
	TotalEpisodes int64 `json:"totalEpisodes"`
}

// Show mirrors the `shows` table. Title and slug are unique; the slug is
// derived from the title when not supplied explicitly.
type Show struct {
	ID            uint64        `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description"`
	Artist        ArtistProfile `json:"artist"`
	Image         Image         `json:"image"`
	Genres        []string      `json:"genres"`
	Tags          []string      `json:"tags"`
	Schedule      Schedule      `json:"schedule"`
	RequestStatus string        `json:"requestStatus"`
	AdminNotes    *string       `json:"adminNotes,omitempty"`
	Status        string        `json:"status"`
	Featured      bool          `json:"featured"`
	Stats         ShowStats     `json:"stats"`
	CreatedBy     uint64        `json:"createdBy"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
