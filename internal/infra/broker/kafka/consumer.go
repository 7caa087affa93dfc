package kafka

import (
	"context"
	"errors"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed message. Returning an error keeps
// the offset unmarked so the message is redelivered.
type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer runs a consumer group session, feeding each claimed message to
// the handler. The competitor feed consumer is its only user today.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Version = sarama.V2_5_0_0
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: group, handler: handler}, nil
}

// Run blocks consuming the topics until the context is canceled or the
// group is closed. Rebalances restart the inner consume loop.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		err := c.group.Consume(ctx, topics, claimRunner{handler: c.handler})
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type claimRunner struct {
	handler MessageHandler
}

func (r claimRunner) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (r claimRunner) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (r claimRunner) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := r.handler.Handle(sess.Context(), message); err != nil {
			continue
		}
		sess.MarkMessage(message, "")
	}
	return nil
}
