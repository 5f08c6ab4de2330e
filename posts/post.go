// Package posts holds the timeline records and the mapping from API JSON to them.
package posts

import "time"

// TimestampLayout is the format of the API's created_at field.
const TimestampLayout = "Mon Jan 02 15:04:05 -0700 2006"

type User struct {
	ID              int64
	Name            string
	ScreenName      string
	ProfileImageURL string
}

type Post struct {
	ID        int64
	Body      string
	CreatedAt string // kept in TimestampLayout, see CreatedTime
	UserID    int64
	User      User
	MediaURL  string // first photo attachment, "" when there is none
	Liked     bool
	LikeCount int64
}

// HasMedia reports whether the post carries a photo.
func (p Post) HasMedia() bool {
	return p.MediaURL != ""
}

// CreatedTime parses CreatedAt. The zero time is returned when it does not parse.
func (p Post) CreatedTime() time.Time {
	t, err := time.Parse(TimestampLayout, p.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IDs returns the ids of list in order.
func IDs(list []Post) []int64 {
	ids := make([]int64, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	return ids
}
