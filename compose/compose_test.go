package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agnosto/chirp/posts"
)

type fakePublisher struct {
	sent []string
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, text string) (posts.Post, error) {
	f.sent = append(f.sent, text)
	if f.err != nil {
		return posts.Post{}, f.err
	}
	return posts.Post{ID: 77, Body: text}, nil
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
		max  int
		want error
	}{
		{"empty", "", 280, ErrEmptyBody},
		{"whitespace", "  \n\t", 280, ErrEmptyBody},
		{"exact limit", strings.Repeat("a", 280), 280, nil},
		{"one over", strings.Repeat("a", 281), 280, ErrTooLong},
		{"multibyte counts as one", strings.Repeat("é", 140), 140, nil},
		{"older limit", strings.Repeat("a", 141), 140, ErrTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.body, tc.max)
			if tc.want == nil && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	if got := Remaining("héllo", 10); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := Remaining(strings.Repeat("a", 12), 10); got != -2 {
		t.Fatalf("expected -2, got %d", got)
	}
}

func TestPublishRejectsBeforeSending(t *testing.T) {
	pub := &fakePublisher{}
	c := NewComposer(pub, 5)

	if _, err := c.Publish(context.Background(), " "); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if _, err := c.Publish(context.Background(), "toolong"); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	if len(pub.sent) != 0 {
		t.Fatalf("nothing should be sent, got %v", pub.sent)
	}
}

func TestPublish(t *testing.T) {
	pub := &fakePublisher{}
	c := NewComposer(pub, 280)

	got, err := c.Publish(context.Background(), "hello")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got.ID != 77 || got.Body != "hello" {
		t.Fatalf("unexpected post %+v", got)
	}
	if len(pub.sent) != 1 || pub.sent[0] != "hello" {
		t.Fatalf("expected body sent once, got %v", pub.sent)
	}
}

func TestPublishWrapsServerError(t *testing.T) {
	boom := errors.New("boom")
	c := NewComposer(&fakePublisher{err: boom}, 280)
	if _, err := c.Publish(context.Background(), "hi"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}
