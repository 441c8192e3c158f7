package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeettech-root/QuickShare-P2P/internal/config"
	"github.com/redis/go-redis/v9"
)

// Feedback is one out-of-band note submitted by an endpoint.
type Feedback struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// FeedbackSink stores feedback records.
type FeedbackSink interface {
	Save(ctx context.Context, fb Feedback) error
}

// LogFeedbackSink writes feedback to the relay log.
type LogFeedbackSink struct {
	logger *slog.Logger
}

func NewLogFeedbackSink(logger *slog.Logger) *LogFeedbackSink {
	return &LogFeedbackSink{logger: logger}
}

func (s *LogFeedbackSink) Save(_ context.Context, fb Feedback) error {
	s.logger.Info("feedback received", "id", fb.ID, "from", fb.From, "text", fb.Text)
	return nil
}

// RedisFeedbackSink appends JSON records to a Redis list.
type RedisFeedbackSink struct {
	client *redis.Client
	key    string
}

// NewRedisFeedbackSink connects and pings the server.
func NewRedisFeedbackSink(ctx context.Context, cfg config.RedisConfig) (*RedisFeedbackSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = "quickshare:feedback"
	}
	return &RedisFeedbackSink{client: client, key: key}, nil
}

func (s *RedisFeedbackSink) Save(ctx context.Context, fb Feedback) error {
	data, err := json.Marshal(fb)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.key, data).Err()
}

func (s *RedisFeedbackSink) Close() error {
	return s.client.Close()
}
