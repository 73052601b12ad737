package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NatsPublisher публикует события в NATS в формате JSON
type NatsPublisher struct {
	conn *nats.Conn
}

// NewNatsPublisher подключается к NATS
func NewNatsPublisher(url string, logger *zap.Logger) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("swapplace-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("Соединение с NATS потеряно", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Соединение с NATS восстановлено", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подключении к NATS: %w", err)
	}
	return &NatsPublisher{conn: conn}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации события: %w", err)
	}
	return p.conn.Publish(subject, jsonData)
}

func (p *NatsPublisher) Close() {
	p.conn.Close()
}
