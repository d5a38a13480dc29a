package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// UpdatesChannel is the Redis pub/sub channel carrying UpdateEvent JSON.
const UpdatesChannel = "jobs:updates"

type UpdateEvent struct {
	Type        string         `json:"type"` // always "jobs_updated"
	UploadID    string         `json:"upload_id"`
	Inserted    int            `json:"inserted"`
	PerIndustry map[string]int `json:"per_industry"`
	At          time.Time      `json:"at"`
}

// Publisher fans out ingestion results to listeners.
type Publisher interface {
	Publish(ctx context.Context, evt UpdateEvent) error
}

type redisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb, channel: UpdatesChannel}
}

func (p *redisPublisher) Publish(ctx context.Context, evt UpdateEvent) error {
	if evt.Type == "" {
		evt.Type = "jobs_updated"
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}
