package repository

import "time"

// Preference is one key/value client setting.
type Preference struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// RecentKind distinguishes cached recent study sets from folders.
type RecentKind string

const (
	RecentKindSet    RecentKind = "set"
	RecentKindFolder RecentKind = "folder"
)

// RecentItem is one row of the last successful recent.get snapshot.
type RecentItem struct {
	Kind           RecentKind
	ID             string
	Title          string
	Slug           *string
	AuthorUsername *string
	AuthorImage    *string
	ViewedAt       time.Time
	Position       int
	FetchedAt      time.Time
}

// ShareLink records a link the user copied.
type ShareLink struct {
	ID         string
	TargetKind RecentKind
	Target     string
	URL        string
	CreatedAt  time.Time
}
