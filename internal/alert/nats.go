package alert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher is the part of *nats.Conn the sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ConnectNATS dials the server with reconnects enabled.
func ConnectNATS(url string, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("storefront-cart"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect failed: %w", err)
	}
	return nc, nil
}

type natsAlert struct {
	Session string    `json:"session_id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// NATSSink publishes a session's alerts on <prefix>.<session> so that
// connected frontends can show them without polling.
type NATSSink struct {
	pub       Publisher
	subject   string
	sessionID string
	logger    *zap.Logger
}

func NewNATSSink(pub Publisher, prefix, sessionID string, logger *zap.Logger) *NATSSink {
	return &NATSSink{
		pub:       pub,
		subject:   fmt.Sprintf("%s.%s", prefix, sessionID),
		sessionID: sessionID,
		logger:    logger,
	}
}

func (n *NATSSink) Success(message string) { n.publish(LevelSuccess, message) }
func (n *NATSSink) Error(message string)   { n.publish(LevelError, message) }

func (n *NATSSink) publish(level Level, message string) {
	data, err := json.Marshal(natsAlert{
		Session: n.sessionID,
		Level:   level,
		Message: message,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		n.logger.Error("failed to encode alert", zap.Error(err))
		return
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		n.logger.Warn("failed to publish alert", zap.String("subject", n.subject), zap.Error(err))
	}
}
