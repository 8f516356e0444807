package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BoardEntry is the payload published to display clients when a ticket is
// called to a desk.
type BoardEntry struct {
	Number     string    `json:"number"`
	Module     string    `json:"module"`
	StaffName  string    `json:"staff_name"`
	AttendedAt time.Time `json:"attended_at"`
}

// Announcer publishes now-serving updates on a Redis channel. Publishing is
// best-effort; a broken Redis never blocks assignment.
type Announcer struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewAnnouncer creates the announcer.
func NewAnnouncer(client *redis.Client, channel string, logger *zap.Logger) *Announcer {
	return &Announcer{client: client, channel: channel, logger: logger}
}

// PublishNowServing broadcasts a board entry.
func (a *Announcer) PublishNowServing(ctx context.Context, entry BoardEntry) {
	if a == nil || a.client == nil {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		a.logger.Error("marshal board entry", zap.Error(err))
		return
	}
	if err := a.client.Publish(ctx, a.channel, payload).Err(); err != nil {
		a.logger.Warn("publish now-serving", zap.Error(err), zap.String("number", entry.Number))
	}
}
