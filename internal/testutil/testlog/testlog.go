package testlog

import (
	"testing"

	"github.com/danmuck/esphost/internal/logging"
	"github.com/danmuck/esphost/internal/logs"
)

func Start(t testing.TB) {
	t.Helper()
	logging.ConfigureTests()
	logs.Infof("test=%s", t.Name())
}
