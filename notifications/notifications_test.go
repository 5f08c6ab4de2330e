package notifications

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/agnosto/chirp/config"
	"github.com/agnosto/chirp/posts"
)

type sent struct {
	title, message string
}

func newService(enabled, system bool, err error) (*NotificationService, *[]sent) {
	cfg := config.CreateDefaultConfig()
	cfg.Notifications.Enabled = enabled
	cfg.Notifications.SystemNotify = system

	var got []sent
	ns := NewNotificationService(cfg)
	ns.notify = func(title, message, icon string) error {
		got = append(got, sent{title, message})
		return err
	}
	return ns, &got
}

func TestNotifyNewPost(t *testing.T) {
	ns, got := newService(true, true, nil)
	ns.NotifyNewPost(posts.Post{Body: "hello", User: posts.User{ScreenName: "ada"}})

	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	if (*got)[0].title != "New post from @ada" || (*got)[0].message != "hello" {
		t.Fatalf("unexpected notification %+v", (*got)[0])
	}
}

func TestNotifyNewPostDisabled(t *testing.T) {
	for _, tc := range []struct{ enabled, system bool }{{false, true}, {true, false}} {
		ns, got := newService(tc.enabled, tc.system, nil)
		ns.NotifyNewPost(posts.Post{Body: "hello"})
		if len(*got) != 0 {
			t.Fatalf("expected no notification for %+v", tc)
		}
	}
}

func TestNotifyNewPostToleratesFailure(t *testing.T) {
	ns, got := newService(true, true, errors.New("no dbus"))
	ns.NotifyNewPost(posts.Post{Body: "hello"})
	if len(*got) != 1 {
		t.Fatalf("expected an attempt")
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("é", 200)
	got := preview(long)
	if utf8.RuneCountInString(got) != maxPreview || !strings.HasSuffix(got, "…") {
		t.Fatalf("unexpected preview %q", got)
	}
	if preview("short") != "short" {
		t.Fatalf("short bodies stay intact")
	}
}
