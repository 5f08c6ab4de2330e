package posts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedRecord is matched by every error ParsePost, ParseUser and
// ParsePostList return for a payload missing a required field.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError names the record kind and field that failed.
type MalformedRecordError struct {
	Record string
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed %s: %s", e.Record, e.Reason)
	}
	return fmt.Sprintf("malformed %s: field %q %s", e.Record, e.Field, e.Reason)
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

type object map[string]json.RawMessage

func decodeObject(record string, data []byte) (object, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, &MalformedRecordError{Record: record, Reason: "is not a JSON object"}
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// required decodes obj[name] into dst, refusing absent, null and mistyped values.
func (obj object) required(record, name string, dst any) error {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		return &MalformedRecordError{Record: record, Field: name, Reason: "is missing"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &MalformedRecordError{Record: record, Field: name, Reason: "has the wrong type"}
	}
	return nil
}

// optional decodes obj[name] into dst when present; bad values leave dst alone.
func (obj object) optional(name string, dst any) bool {
	raw, ok := obj[name]
	if !ok || isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// ParseUser maps a user object. id, name, screen_name and a profile image are
// required; profile_image_url_https wins over profile_image_url.
func ParseUser(data []byte) (User, error) {
	obj, err := decodeObject("user", data)
	if err != nil {
		return User{}, err
	}

	var u User
	if err := obj.required("user", "id", &u.ID); err != nil {
		return User{}, err
	}
	if err := obj.required("user", "name", &u.Name); err != nil {
		return User{}, err
	}
	if err := obj.required("user", "screen_name", &u.ScreenName); err != nil {
		return User{}, err
	}
	if !obj.optional("profile_image_url_https", &u.ProfileImageURL) || u.ProfileImageURL == "" {
		if err := obj.required("user", "profile_image_url", &u.ProfileImageURL); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

// ParsePost maps a single post payload, including its author.
func ParsePost(data []byte) (Post, error) {
	obj, err := decodeObject("post", data)
	if err != nil {
		return Post{}, err
	}

	var p Post
	if err := obj.required("post", "text", &p.Body); err != nil {
		return Post{}, err
	}
	if err := obj.required("post", "created_at", &p.CreatedAt); err != nil {
		return Post{}, err
	}
	if err := obj.required("post", "id", &p.ID); err != nil {
		return Post{}, err
	}

	var rawUser json.RawMessage
	if err := obj.required("post", "user", &rawUser); err != nil {
		return Post{}, err
	}
	user, err := ParseUser(rawUser)
	if err != nil {
		return Post{}, err
	}
	p.User = user
	p.UserID = user.ID

	if err := obj.required("post", "favorited", &p.Liked); err != nil {
		return Post{}, err
	}
	obj.optional("favorite_count", &p.LikeCount)
	p.MediaURL = firstPhoto(obj)

	return p, nil
}

// firstPhoto looks only at entities.media[0]. Anything but a photo there means
// the post has no media.
func firstPhoto(obj object) string {
	var entities struct {
		Media []json.RawMessage `json:"media"`
	}
	if !obj.optional("entities", &entities) || len(entities.Media) == 0 {
		return ""
	}

	var first struct {
		Type          string `json:"type"`
		MediaURLHTTPS string `json:"media_url_https"`
	}
	if err := json.Unmarshal(entities.Media[0], &first); err != nil {
		return ""
	}
	if first.Type == "photo" {
		return first.MediaURLHTTPS
	}
	return ""
}

// ParsePostList maps a JSON array in order. The first malformed element fails
// the whole list.
func ParsePostList(data []byte) ([]Post, error) {
	var items []json.RawMessage
	// null decodes into a nil slice without error
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, &MalformedRecordError{Record: "post list", Reason: "is not a JSON array"}
	}

	list := make([]Post, 0, len(items))
	for i, item := range items {
		p, err := ParsePost(item)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i, err)
		}
		list = append(list, p)
	}
	return list, nil
}
