package services

import (
	"sync"
	"time"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
)

const maxPendingNotices = 20

// NoticeInbox collects user-visible notices for one session until the HTTP
// layer drains them into a response. Only the newest notices are kept.
type NoticeInbox struct {
	mu      sync.Mutex
	notices []models.Notice
	now     func() time.Time
}

func NewNoticeInbox() *NoticeInbox {
	return &NoticeInbox{now: time.Now}
}

func (n *NoticeInbox) Notify(level models.NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, models.Notice{Level: level, Message: message, At: n.now().UTC()})
	if over := len(n.notices) - maxPendingNotices; over > 0 {
		n.notices = append([]models.Notice(nil), n.notices[over:]...)
	}
}

// Drain returns the pending notices and empties the inbox.
func (n *NoticeInbox) Drain() []models.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.notices
	n.notices = nil
	if out == nil {
		return []models.Notice{}
	}
	return out
}
