package trigger

import "testing"

// testLogger routes engine log output through testing.T, matching the
// pattern used elsewhere in this repository's test suite.
type testLogger struct {
	t *testing.T
}

func (l *testLogger) Info(msg string, args ...any)  { l.t.Log(msg, args) }
func (l *testLogger) Error(msg string, args ...any) { l.t.Log("ERROR", msg, args) }
func (l *testLogger) Warn(msg string, args ...any)  { l.t.Log("WARN", msg, args) }
func (l *testLogger) Debug(msg string, args ...any) { l.t.Log(msg, args) }
