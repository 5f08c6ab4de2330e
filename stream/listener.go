// Package stream listens for new posts on the optional live websocket.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/agnosto/chirp/config"
	"github.com/agnosto/chirp/headers"
	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/posts"
	"github.com/gorilla/websocket"
)

// Frame types.
const (
	TypePing    = 0
	TypeAuth    = 1
	TypeNewPost = 2
)

var (
	ErrDisabled   = errors.New("stream url is not configured")
	ErrAuthFailed = errors.New("stream authentication failed")
)

type frame struct {
	Type int             `json:"t"`
	Data json.RawMessage `json:"d"`
}

type Listener struct {
	url          string
	token        string
	headers      *headers.ClientHeaders
	dialer       *websocket.Dialer
	authTimeout  time.Duration
	pingInterval time.Duration
}

func NewListener(cfg *config.Config) *Listener {
	return &Listener{
		url:     cfg.API.StreamURL,
		token:   cfg.Account.AuthToken,
		headers: headers.NewClientHeaders(cfg),
		dialer: &websocket.Dialer{
			HandshakeTimeout: 45 * time.Second,
		},
		authTimeout:  10 * time.Second,
		pingInterval: 30 * time.Second,
	}
}

func (l *Listener) Enabled() bool {
	return l.url != ""
}

// Run connects, authenticates and calls onPost for every new post until ctx is
// done or the connection drops. It does not reconnect.
func (l *Listener) Run(ctx context.Context, onPost func(posts.Post)) error {
	if !l.Enabled() {
		return ErrDisabled
	}

	conn, resp, err := l.dialer.DialContext(ctx, l.url, l.headers.StreamHeaders())
	if err != nil {
		if resp != nil {
			return fmt.Errorf("error connecting to stream: %w (status: %s)", err, resp.Status)
		}
		return fmt.Errorf("error connecting to stream: %w", err)
	}
	defer conn.Close()
	logger.Logger.Printf("[INFO] Connected to stream %s", l.url)

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(10*time.Second))
	})

	// Closing the conn unblocks the auth read when ctx ends first.
	stopWatch := context.AfterFunc(ctx, func() { conn.Close() })
	err = l.authenticate(conn)
	stopWatch()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go l.keepAlive(ctx, conn, done)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Logger.Printf("[INFO] Stream closed by server")
				return nil
			}
			return fmt.Errorf("error reading stream: %w", err)
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg frame
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Logger.Printf("[WARN] Ignoring unreadable stream frame: %v", err)
			continue
		}
		if msg.Type != TypeNewPost {
			continue
		}

		p, err := posts.ParsePost(msg.Data)
		if err != nil {
			logger.Logger.Printf("[WARN] Ignoring malformed post from stream: %v", err)
			continue
		}
		onPost(p)
	}
}

func (l *Listener) authenticate(conn *websocket.Conn) error {
	token, err := json.Marshal(struct {
		Token string `json:"token"`
	}{l.token})
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(frame{Type: TypeAuth, Data: token}); err != nil {
		return fmt.Errorf("error sending auth message: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(l.authTimeout))
	var reply frame
	err = conn.ReadJSON(&reply)
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		return fmt.Errorf("error receiving auth response: %w", err)
	}
	if reply.Type != TypeAuth {
		return fmt.Errorf("unexpected response type %d: %w", reply.Type, ErrAuthFailed)
	}
	return nil
}

// keepAlive is the only writer once Run starts reading.
func (l *Listener) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteJSON(frame{Type: TypePing, Data: json.RawMessage(`"p"`)}); err != nil {
				logger.Logger.Printf("[WARN] Stream ping failed: %v", err)
				return
			}
		}
	}
}
