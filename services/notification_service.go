package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"scout-platform/i18n"
	"scout-platform/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// NotificationService persists per-user notifications and streams new ones.
type NotificationService struct {
	DB           *gorm.DB
	PollInterval time.Duration
	Now          func() time.Time
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db, PollInterval: 2 * time.Second, Now: time.Now}
}

// Notify stores a notification for userID with a message localized to lang.
// args fill the message template of kind.
func (s *NotificationService) Notify(ctx context.Context, userID, lang, kind string, payload map[string]string, args ...interface{}) (*models.Notification, error) {
	n := &models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Kind:    kind,
		Message: i18n.T(lang, kind, args...),
		Payload: payload,
	}
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	log.Debug().Str("user_id", userID).Str("kind", kind).Msg("🔔 notification stored")
	return n, nil
}

// notifyUser is the fire-and-forget form used after a committed change.
func (s *NotificationService) notifyUser(ctx context.Context, user *models.User, kind string, payload map[string]string, args ...interface{}) {
	if s == nil || user == nil {
		return
	}
	if _, err := s.Notify(ctx, user.ID, user.PreferredLanguage, kind, payload, args...); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Str("kind", kind).Msg("failed to store notification")
	}
}

// NotificationPage is one page of a user's notifications.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int64                 `json:"unread"`
	Page          int                   `json:"page"`
	Size          int                   `json:"size"`
	TotalItems    int64                 `json:"total_items"`
	TotalPages    int                   `json:"total_pages"`
}

// List returns newest-first notifications for a user.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, size int) (*NotificationPage, error) {
	page, size = normalizePage(page, size)
	db := s.DB.WithContext(ctx)

	q := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}
	var unread int64
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&unread).Error; err != nil {
		return nil, err
	}

	var items []models.Notification
	if err := q.Order("created_at DESC").Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
		return nil, err
	}
	return &NotificationPage{
		Notifications: items,
		Unread:        unread,
		Page:          page,
		Size:          size,
		TotalItems:    total,
		TotalPages:    totalPages(total, size),
	}, nil
}

// MarkRead marks one notification read; it must belong to userID.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	now := s.Now()
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of userID read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	now := s.Now()
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", &now)
	return res.RowsAffected, res.Error
}

// streamLookback is how far behind the newest sent row each poll reaches,
// so rows committed late with an earlier created_at are still delivered.
const streamLookback = 30 * time.Second

// streamCursor tracks what a stream already delivered.
type streamCursor struct {
	since time.Time
	sent  map[string]time.Time
}

func newStreamCursor(start time.Time, seen []models.Notification) *streamCursor {
	c := &streamCursor{since: start, sent: map[string]time.Time{}}
	for _, n := range seen {
		c.sent[n.ID] = n.CreatedAt
	}
	return c
}

// from is the lower created_at bound of the next poll.
func (c *streamCursor) from() time.Time {
	return c.since.Add(-streamLookback)
}

// take returns the rows not delivered yet and advances the cursor.
func (c *streamCursor) take(rows []models.Notification) []models.Notification {
	var out []models.Notification
	for _, n := range rows {
		if _, ok := c.sent[n.ID]; ok {
			continue
		}
		c.sent[n.ID] = n.CreatedAt
		if n.CreatedAt.After(c.since) {
			c.since = n.CreatedAt
		}
		out = append(out, n)
	}
	floor := c.from()
	for id, at := range c.sent {
		if at.Before(floor) {
			delete(c.sent, id)
		}
	}
	return out
}

// Stream writes notifications created after the call as SSE "notification"
// events until ctx is done or the client goes away.
func (s *NotificationService) Stream(ctx context.Context, userID string, w *bufio.Writer) {
	interval := s.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := s.Now()
	var existing []models.Notification
	if err := s.DB.WithContext(ctx).
		Select("id", "created_at").
		Where("user_id = ? AND created_at >= ?", userID, start.Add(-streamLookback)).
		Find(&existing).Error; err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("SSE init error")
	}
	cursor := newStreamCursor(start, existing)

	// initial keepalive comment
	w.WriteString(":\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	idle := 0
	for {
		select {
		case <-ticker.C:
			var rows []models.Notification
			err := s.DB.WithContext(ctx).
				Where("user_id = ? AND created_at >= ?", userID, cursor.from()).
				Order("created_at ASC").
				Find(&rows).Error
			if err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("SSE query error")
				continue
			}

			fresh := cursor.take(rows)
			if len(fresh) == 0 {
				idle++
				if idle%15 == 0 {
					w.WriteString(": ping\n\n")
					if err := w.Flush(); err != nil {
						return
					}
				}
				continue
			}
			idle = 0

			for _, n := range fresh {
				payload, _ := json.Marshal(n)
				fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", n.ID, payload)
			}
			if err := w.Flush(); err != nil {
				// client disconnected
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
