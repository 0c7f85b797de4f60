package domain

import "time"

// UnknownLabel is the bucket for open events missing a categorical dimension
// (country, device, client). Missing values are tallied, not dropped.
const UnknownLabel = "Unknown"

// OpenEvent is one recorded email open. A subscriber can open the same post
// many times; raw events feed distribution tallies while open-rate math
// deduplicates by email.
type OpenEvent struct {
	PostID     string     `json:"post_id"`
	Email      string     `json:"email" validate:"required"`
	Timestamp  *time.Time `json:"timestamp"`
	Country    string     `json:"country"`
	City       string     `json:"city"`
	Region     string     `json:"region"`
	DeviceType string     `json:"device_type"`
	ClientOS   string     `json:"client_os"`
	ClientType string     `json:"client_type"`
	UserAgent  string     `json:"user_agent"`
}

// DeliverEvent is one successful email delivery. One row per send; the row
// count for a post is its delivered count.
type DeliverEvent struct {
	PostID    string     `json:"post_id"`
	Email     string     `json:"email" validate:"required"`
	Timestamp *time.Time `json:"timestamp"`
}
