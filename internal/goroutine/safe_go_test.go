package goroutine

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeGo_RecoversPanic(t *testing.T) {
	log, hook := test.NewNullLogger()
	rh := NewRecoveryHandler(logrus.NewEntry(log))

	done := make(chan struct{})
	rh.SafeGo(func() {
		defer close(done)
		panic("boom")
	})
	<-done

	require.Eventually(t, func() bool { return len(hook.AllEntries()) == 1 }, time.Second, 5*time.Millisecond)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "boom", entry.Data["panic"])
}
