package logger

import (
	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	// До вызова Init пакеты пишут в логгер по умолчанию, а не паникуют на nil.
	Log = logrus.New()
}

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text включается через SetTextFormatter
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// WithComponent возвращает запись с полем component.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
