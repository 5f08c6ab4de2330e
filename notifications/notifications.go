package notifications

import (
	"fmt"

	"github.com/agnosto/chirp/config"
	"github.com/agnosto/chirp/logger"
	"github.com/agnosto/chirp/posts"
	"github.com/gen2brain/beeep"
)

// maxPreview is how much of a post body goes into a desktop notification.
const maxPreview = 120

type NotificationService struct {
	config *config.Config
	notify func(title, message, icon string) error
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{
		config: cfg,
		notify: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
	}
}

// NotifyNewPost sends a system notification for a post that arrived on the stream.
func (ns *NotificationService) NotifyNewPost(p posts.Post) {
	if !ns.config.Notifications.Enabled || !ns.config.Notifications.SystemNotify {
		return
	}

	title := fmt.Sprintf("New post from @%s", p.User.ScreenName)
	ns.sendSystemNotification(preview(p.Body), title, "")
}

func (ns *NotificationService) sendSystemNotification(message, title, iconPath string) {
	if err := ns.notify(title, message, iconPath); err != nil {
		logger.Logger.Printf("[WARN] Failed to send system notification: %v", err)
	}
}

func preview(body string) string {
	r := []rune(body)
	if len(r) <= maxPreview {
		return body
	}
	return string(r[:maxPreview-1]) + "…"
}
