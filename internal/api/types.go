package api

import "time"

// Author is the owning user of a recent item. Image may be absent.
type Author struct {
	Username string  `json:"username"`
	Image    *string `json:"image"`
}

// RecentSet is a recently viewed study set.
type RecentSet struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	ViewedAt time.Time `json:"viewedAt"`
	User     *Author   `json:"user"`
}

// RecentFolder is a recently viewed folder. Slug is nil for folders that
// were never given one; the id is used in their URL instead.
type RecentFolder struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Slug     *string   `json:"slug"`
	ViewedAt time.Time `json:"viewedAt"`
	User     *Author   `json:"user"`
}

// SlugOrID returns the path segment identifying the folder.
func (f RecentFolder) SlugOrID() string {
	if f.Slug != nil && *f.Slug != "" {
		return *f.Slug
	}
	return f.ID
}

// RecentItems is the payload of recent.get.
type RecentItems struct {
	Sets    []RecentSet    `json:"sets"`
	Folders []RecentFolder `json:"folders"`
}

// User is the signed-in account.
type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Image    *string `json:"image"`
	Admin    bool    `json:"admin"`
}

// Session is the payload of session.get. User is nil when signed out.
type Session struct {
	User *User `json:"user"`
}

type folderShareInput struct {
	IDOrSlug string `json:"idOrSlug"`
	Username string `json:"username"`
}
