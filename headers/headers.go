package headers

import (
	"net/http"

	"github.com/agnosto/chirp/config"
	"github.com/google/uuid"
)

type ClientHeaders struct {
	AuthToken string
	UserAgent string
}

func NewClientHeaders(cfg *config.Config) *ClientHeaders {
	return &ClientHeaders{
		AuthToken: cfg.Account.AuthToken,
		UserAgent: cfg.Account.UserAgent,
	}
}

func (h *ClientHeaders) GetBasicHeaders() map[string]string {
	return map[string]string{
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"Authorization":   "Bearer " + h.AuthToken,
		"User-Agent":      h.UserAgent,
	}
}

// AddHeadersToRequest sets the basic headers plus a fresh X-Request-ID, which is
// returned so failures can be logged against it.
func (h *ClientHeaders) AddHeadersToRequest(req *http.Request) string {
	for key, value := range h.GetBasicHeaders() {
		req.Header.Set(key, value)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	return requestID
}

// StreamHeaders are sent with the websocket handshake.
func (h *ClientHeaders) StreamHeaders() http.Header {
	header := http.Header{}
	header.Set("User-Agent", h.UserAgent)
	header.Set("Authorization", "Bearer "+h.AuthToken)
	return header
}
