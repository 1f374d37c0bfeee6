package goroutine

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ecopulse/ecopulse-backend/internal/logger"
)

// RecoveryHandler перехватывает panic в фоновых горутинах.
type RecoveryHandler struct {
	log func() *logrus.Entry
}

// NewRecoveryHandler создает обработчик, который пишет panic в переданный логгер.
func NewRecoveryHandler(entry *logrus.Entry) *RecoveryHandler {
	return &RecoveryHandler{log: func() *logrus.Entry { return entry }}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.Recover("go")
		fn()
	}()
}

// Recover вызывается через defer в уже запущенной горутине.
func (rh *RecoveryHandler) Recover(where string) {
	if r := recover(); r != nil {
		rh.log().WithFields(logrus.Fields{
			"panic": r,
			"where": where,
			"stack": string(debug.Stack()),
		}).Error("panic в горутине")
	}
}

// DefaultRecoveryHandler пишет в глобальный логгер. Логгер берётся лениво,
// потому что logger.Init пересоздаёт его при старте.
var DefaultRecoveryHandler = &RecoveryHandler{
	log: func() *logrus.Entry { return logger.WithComponent("goroutine") },
}

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}
