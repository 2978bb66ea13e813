// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for the show moderation workflow.
const (
	RequestSubmittedQueue = "show.request.submitted"
	RequestResolvedQueue  = "show.request.resolved"
)

// ShowRequestSubmittedEvent is published when an artist submits a new show
// request. Consumers (notification tooling, the moderation log) get enough
// context to act without querying the primary database.
type ShowRequestSubmittedEvent struct {
	ShowID      uint64 `json:"show_id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	ArtistName  string `json:"artist_name"`
	SubmittedBy uint64 `json:"submitted_by"`
	SubmittedAt string `json:"submitted_at"`
}

// ShowRequestResolvedEvent is published when an admin approves or rejects
// a pending show request. Resolution is "approved" or "rejected"; Notes
// carries the admin's justification (always present on rejection).
type ShowRequestResolvedEvent struct {
	ShowID     uint64 `json:"show_id"`
	Title      string `json:"title"`
	Resolution string `json:"resolution"`
	Notes      string `json:"notes,omitempty"`
	ResolvedBy uint64 `json:"resolved_by"`
	ResolvedAt string `json:"resolved_at"`
}
