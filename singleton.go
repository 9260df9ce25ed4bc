package trigger

import (
	"sync"
	"sync/atomic"

	"github.com/Miles0sage/trigger-engine/config"
)

var (
	singletonOnce sync.Once
	singleton     atomic.Pointer[Engine]
)

// GetEngine returns the process-wide Engine, creating it on first use with
// default configuration and a no-op logger. Most applications should
// instead hold their own *Engine via NewEngine; this exists for test
// isolation and quick scripts.
func GetEngine() *Engine {
	singletonOnce.Do(func() {
		singleton.Store(NewEngine(config.DefaultEngineConfig(), nil))
	})
	return singleton.Load()
}

// ResetEngine clears the current singleton's registry and swaps in a brand
// new Engine, so the next GetEngine call returns a distinct instance. Meant
// for test isolation between test cases that rely on GetEngine.
func ResetEngine() {
	singletonOnce.Do(func() {})
	if old := singleton.Load(); old != nil {
		old.ClearAll()
	}
	singleton.Store(NewEngine(config.DefaultEngineConfig(), nil))
}
