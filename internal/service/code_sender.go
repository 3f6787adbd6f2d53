package service

import (
	"context"

	"github.com/teenlance/teenlance-backend/internal/logger"
)

// LogCodeSender пишет код в лог вместо отправки. Используется в development,
// пока не подключён SMS шлюз.
type LogCodeSender struct{}

func NewLogCodeSender() *LogCodeSender {
	return &LogCodeSender{}
}

// SendCode реализует CodeSender.
func (s *LogCodeSender) SendCode(ctx context.Context, destination, code string) error {
	logger.Log.WithFields(map[string]interface{}{
		"destination": destination,
		"code":        code,
	}).Info("code sender: код подтверждения (dev режим)")
	return nil
}
