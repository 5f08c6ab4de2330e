// Package compose validates and publishes new posts.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/posts"
)

var (
	ErrEmptyBody = errors.New("post body is empty")
	ErrTooLong   = errors.New("post body is too long")
)

// Publisher creates a post on the server.
type Publisher interface {
	Publish(ctx context.Context, text string) (posts.Post, error)
}

// Validate checks body against maxLen, counted in characters.
func Validate(body string, maxLen int) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	if n := utf8.RuneCountInString(body); maxLen > 0 && n > maxLen {
		return fmt.Errorf("%d of %d characters: %w", n, maxLen, ErrTooLong)
	}
	return nil
}

// Remaining returns how many characters are left before maxLen. It goes
// negative once the body is over the limit.
func Remaining(body string, maxLen int) int {
	return maxLen - utf8.RuneCountInString(body)
}

type Composer struct {
	publisher Publisher
	maxLen    int
}

func NewComposer(publisher Publisher, maxLen int) *Composer {
	return &Composer{publisher: publisher, maxLen: maxLen}
}

func (c *Composer) MaxLen() int {
	return c.maxLen
}

// Publish validates body and sends it. Invalid input never reaches the server.
func (c *Composer) Publish(ctx context.Context, body string) (posts.Post, error) {
	if err := Validate(body, c.maxLen); err != nil {
		return posts.Post{}, err
	}

	created, err := c.publisher.Publish(ctx, body)
	if err != nil {
		logger.Logger.Printf("[ERROR] Failed to publish post: %v", err)
		return posts.Post{}, fmt.Errorf("publish: %w", err)
	}
	logger.Logger.Printf("[INFO] Published post %d", created.ID)
	return created, nil
}
