package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agnosto/chirp/config"
	"github.com/agnosto/chirp/posts"
	"github.com/gorilla/websocket"
)

func postFrame(id int64) string {
	return fmt.Sprintf(`{"t": 2, "d": {"id": %d, "text": "live %d", "created_at": "Wed Oct 10 20:19:24 +0000 2018",
		"favorited": false, "user": {"id": 1, "name": "Ada", "screen_name": "ada", "profile_image_url": "https://img"}}}`, id, id)
}

func newListener(t *testing.T, handler func(conn *websocket.Conn)) *Listener {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)

	cfg := config.CreateDefaultConfig()
	cfg.Account.AuthToken = "secret"
	cfg.API.StreamURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return NewListener(cfg)
}

func readAuth(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	var msg frame
	if err := conn.ReadJSON(&msg); err != nil {
		t.Errorf("read auth: %v", err)
		return
	}
	var body struct {
		Token string `json:"token"`
	}
	if msg.Type != TypeAuth || json.Unmarshal(msg.Data, &body) != nil || body.Token != "secret" {
		t.Errorf("unexpected auth frame %+v", msg)
	}
}

func TestRunDeliversNewPosts(t *testing.T) {
	l := newListener(t, func(conn *websocket.Conn) {
		readAuth(t, conn)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"t": 1, "d": {}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(postFrame(11)))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"t": 2, "d": {"id": "bad"}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"t": 9, "d": null}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(postFrame(12)))
		// Hold the connection until the client goes away.
		conn.ReadMessage()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan posts.Post, 4)
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx, func(p posts.Post) { got <- p }) }()

	for _, want := range []int64{11, 12} {
		select {
		case p := <-got:
			if p.ID != want || p.User.ScreenName != "ada" {
				t.Fatalf("expected post %d, got %+v", want, p)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for post %d", want)
		}
	}

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

func TestRunRejectedAuth(t *testing.T) {
	l := newListener(t, func(conn *websocket.Conn) {
		readAuth(t, conn)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"t": 4, "d": "denied"}`))
	})

	err := l.Run(context.Background(), func(posts.Post) { t.Errorf("no posts expected") })
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestRunCancelDuringAuth(t *testing.T) {
	l := newListener(t, func(conn *websocket.Conn) {
		readAuth(t, conn)
		// Never answer; wait for the client to hang up.
		conn.ReadMessage()
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx, func(posts.Post) {}) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run ignored cancel while waiting for auth")
	}
}

func TestRunServerClose(t *testing.T) {
	l := newListener(t, func(conn *websocket.Conn) {
		readAuth(t, conn)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"t": 1, "d": {}}`))
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	})

	if err := l.Run(context.Background(), func(posts.Post) {}); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}

func TestRunDisabled(t *testing.T) {
	l := NewListener(config.CreateDefaultConfig())
	if l.Enabled() {
		t.Fatalf("default config has no stream url")
	}
	if err := l.Run(context.Background(), func(posts.Post) {}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
