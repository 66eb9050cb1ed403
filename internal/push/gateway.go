// Package push publishes best-effort device pushes onto a Kafka topic
// consumed by the delivery workers. Accounts without a registered
// device are simply skipped.
package push

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pulse/backend/internal/models"
)

type Gateway struct {
	db     *gorm.DB
	writer *kafka.Writer
	log    *zap.Logger
}

// Message is the payload handed to the delivery workers, one per
// registered device.
type Message struct {
	ID       string                `json:"id"`
	Token    string                `json:"token"`
	Platform models.DevicePlatform `json:"platform"`
	Verb     string                `json:"verb"`
}

func NewGateway(db *gorm.DB, brokers []string, topic string, log *zap.Logger) *Gateway {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &Gateway{db: db, writer: w, log: log}
}

// Push publishes one message per device of the recipient. Errors are
// logged and swallowed: push delivery never affects the triggering
// mutation.
func (g *Gateway) Push(ctx context.Context, recipientID uint, verb string) {
	var devices []models.Device
	if err := g.db.WithContext(ctx).Where("account_id = ?", recipientID).Find(&devices).Error; err != nil {
		g.log.Warn("push device lookup failed",
			zap.Uint("recipient", recipientID), zap.Error(err))
		return
	}
	if len(devices) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(devices))
	for _, d := range devices {
		payload, err := json.Marshal(Message{
			ID:       uuid.New().String(),
			Token:    d.Token,
			Platform: d.Platform,
			Verb:     verb,
		})
		if err != nil {
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(d.Token),
			Value: payload,
		})
	}

	if err := g.writer.WriteMessages(ctx, msgs...); err != nil {
		g.log.Warn("push publish failed",
			zap.Uint("recipient", recipientID), zap.Error(err))
	}
}

func (g *Gateway) Close() error {
	if g == nil || g.writer == nil {
		return nil
	}
	return g.writer.Close()
}
