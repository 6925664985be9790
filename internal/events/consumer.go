// Package events consumes back-office mutation events and turns them into
// on-demand refresh triggers, so a recorded payment shows up in the
// notifications center without waiting for the next poll tick.
package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"

	"rentdesk/internal/logging"
)

// Refresher is the slice of the alert engine the consumer needs.
type Refresher interface {
	RefreshNow()
}

// mutation is a back-office change event. Only entities feeding the alert
// derivation trigger a refresh.
type mutation struct {
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	RecordID int64  `json:"record_id"`
}

type Consumer struct {
	reader *kafka.Reader
	engine Refresher
	logger *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewConsumer(brokers []string, topic, groupID string, engine Refresher, logger *logging.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
		engine: engine,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Consumer) Start(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Event consumer started: topic=%s", c.reader.Config().Topic)
		for {
			msg, err := c.reader.ReadMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			var m mutation
			if err := json.Unmarshal(msg.Value, &m); err != nil {
				c.logger.Errorf("Unmarshal event failed: %v", err)
				continue
			}
			if !relevant(m.Entity) {
				continue
			}

			c.logger.Debugf("Mutation event: %s %s #%d, refreshing", m.Action, m.Entity, m.RecordID)
			c.engine.RefreshNow()
		}
	}()
}

func (c *Consumer) Close() {
	c.cancel()
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Consumer close failed: %v", err)
	}
}

func relevant(entity string) bool {
	switch entity {
	case "bill", "payment", "tenant", "lease":
		return true
	default:
		return false
	}
}
