package trigger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/Miles0sage/trigger-engine/config"
)

// triggerEngineBDDContext holds scenario state, following this repository's
// established pattern of a single mutex-guarded struct reused across step
// methods and reset at the start of each scenario.
type triggerEngineBDDContext struct {
	mu sync.Mutex

	engine      *Engine
	runOrder    []string
	ran         map[string]bool
	actionRan   map[string]bool
	lastErr     error
	release     chan struct{}
	emitCount   int
	maxObserved int

	completed    int
	unregistered bool
}

func (c *triggerEngineBDDContext) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine = NewEngine(config.DefaultEngineConfig(), nil)
	c.runOrder = nil
	c.ran = make(map[string]bool)
	c.actionRan = make(map[string]bool)
	c.lastErr = nil
	c.release = make(chan struct{})
	c.emitCount = 0
	c.maxObserved = 0
	c.completed = 0
	c.unregistered = false
}

func (c *triggerEngineBDDContext) aFreshTriggerEngine() error {
	c.reset()
	return nil
}

func (c *triggerEngineBDDContext) aTriggerEngineWithMaxConcurrentExecutionsOf(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cfg := config.DefaultEngineConfig()
	cfg.MaxConcurrentExecutions = n
	c.engine = NewEngine(cfg, nil)
	return nil
}

func (c *triggerEngineBDDContext) recordAction(name string) Action {
	return func(ctx context.Context, data any) error {
		c.mu.Lock()
		c.runOrder = append(c.runOrder, name)
		c.ran[name] = true
		c.mu.Unlock()
		return nil
	}
}

func (c *triggerEngineBDDContext) aTriggerOnEventWithPriority(name, eventType, priority string) error {
	p := parsePriority(priority)
	_, err := c.engine.Register(Trigger{ID: name, EventType: eventType, Priority: p, Actions: []Action{c.recordAction(name)}})
	return err
}

func (c *triggerEngineBDDContext) aTriggerOnEventWithPriorityAndAConditionThatRequiresThePayloadToBeTrue(name, eventType, priority string) error {
	p := parsePriority(priority)
	_, err := c.engine.Register(Trigger{
		EventType: eventType,
		Priority:  p,
		Condition: func(data any) bool { b, _ := data.(bool); return b },
		Actions:   []Action{c.recordAction(name)},
	})
	return err
}

func (c *triggerEngineBDDContext) aTriggerOnEventWithAFailingFirstActionAndASucceedingSecondAction(name, eventType string) error {
	failing := func(ctx context.Context, data any) error { return fmt.Errorf("boom") }
	succeeding := func(ctx context.Context, data any) error {
		c.mu.Lock()
		c.actionRan[name+":second"] = true
		c.mu.Unlock()
		return nil
	}
	_, err := c.engine.Register(Trigger{ID: name, EventType: eventType, Actions: []Action{failing, succeeding}})
	return err
}

func (c *triggerEngineBDDContext) aTriggerOnEventWithAFailingAction(name, eventType string) error {
	failing := func(ctx context.Context, data any) error { return fmt.Errorf("boom") }
	_, err := c.engine.Register(Trigger{ID: name, EventType: eventType, Actions: []Action{failing}})
	return err
}

func (c *triggerEngineBDDContext) aTriggerOnEventWithASucceedingAction(name, eventType string) error {
	_, err := c.engine.Register(Trigger{ID: name, EventType: eventType, Actions: []Action{c.recordAction(name)}})
	return err
}

func (c *triggerEngineBDDContext) aTriggerOnEventThatBlocksUntilReleased(name, eventType string) error {
	_, err := c.engine.Register(Trigger{ID: name, EventType: eventType, Actions: []Action{func(ctx context.Context, data any) error {
		c.mu.Lock()
		observed := c.engine.Stats().ExecutingCount
		if observed > c.maxObserved {
			c.maxObserved = observed
		}
		release := c.release
		c.mu.Unlock()
		<-release
		c.mu.Lock()
		c.completed++
		c.mu.Unlock()
		return nil
	}}})
	return err
}

func (c *triggerEngineBDDContext) eventIsEmitted(eventType string) error {
	return c.engine.Emit(context.Background(), eventType, nil)
}

func (c *triggerEngineBDDContext) eventIsEmittedWithPayload(eventType, payload string) error {
	return c.engine.Emit(context.Background(), eventType, payload == "true")
}

func (c *triggerEngineBDDContext) eventIsEmittedNTimes(eventType string, n int) error {
	for i := 0; i < n; i++ {
		if err := c.engine.Emit(context.Background(), eventType, nil); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.emitCount = n
	c.mu.Unlock()
	return nil
}

func (c *triggerEngineBDDContext) theTriggersShouldHaveRunInOrder(order string) error {
	want := splitCSV(order)
	var got []string
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		got = append([]string(nil), c.runOrder...)
		c.mu.Unlock()
		if len(got) == len(want) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(got) != len(want) {
		return fmt.Errorf("expected %d triggers to have run, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("expected order %v, got %v", want, got)
		}
	}
	return nil
}

func (c *triggerEngineBDDContext) triggerShouldNotHaveRun(name string) error {
	time.Sleep(30 * time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ran[name] {
		return fmt.Errorf("expected trigger %q not to have run", name)
	}
	return nil
}

func (c *triggerEngineBDDContext) triggerShouldHaveRun(name string) error {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		ran := c.ran[name]
		c.mu.Unlock()
		if ran {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("expected trigger %q to have run", name)
}

func (c *triggerEngineBDDContext) theSecondActionOfTriggerShouldHaveRun(name string) error {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		ran := c.actionRan[name+":second"]
		c.mu.Unlock()
		if ran {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("expected second action of %q to have run", name)
}

func (c *triggerEngineBDDContext) atMostNDispatchTasksShouldBeExecutingAtOnce(n int) error {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c.engine.Stats().ExecutingCount == n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxObserved > n {
		return fmt.Errorf("observed %d concurrently executing dispatch tasks, want at most %d", c.maxObserved, n)
	}
	return nil
}

func (c *triggerEngineBDDContext) theBlockedTriggersAreReleased() error {
	c.mu.Lock()
	release := c.release
	c.mu.Unlock()
	close(release)
	return nil
}

func (c *triggerEngineBDDContext) allNDispatchTasksShouldEventuallyComplete(n int) error {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		completed := c.completed
		c.mu.Unlock()
		if completed == n && c.engine.Stats().ExecutingCount == 0 {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("dispatch tasks did not drain")
}

func (c *triggerEngineBDDContext) triggerIsUnregisteredWhileItIsExecuting(name string) error {
	deadline := time.Now().Add(time.Second)
	for c.engine.Stats().ExecutingCount == 0 {
		if time.Now().After(deadline) {
			return fmt.Errorf("trigger %q never started executing", name)
		}
		time.Sleep(5 * time.Millisecond)
	}

	var ok atomic.Bool
	done := make(chan struct{})
	go func() {
		ok.Store(c.engine.Unregister(name))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		return fmt.Errorf("unregister call blocked")
	}
	c.mu.Lock()
	c.unregistered = ok.Load()
	c.mu.Unlock()
	return nil
}

func (c *triggerEngineBDDContext) theUnregisterCallShouldSucceedImmediately() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.unregistered {
		return fmt.Errorf("expected unregister to report the trigger as removed")
	}
	return nil
}

func (c *triggerEngineBDDContext) theGlobalEngineHasATriggerRegistered() error {
	ResetEngine()
	_, err := GetEngine().Register(Trigger{EventType: "e", Actions: []Action{c.recordAction("global")}})
	return err
}

func (c *triggerEngineBDDContext) theGlobalEngineIsReset() error {
	ResetEngine()
	return nil
}

func (c *triggerEngineBDDContext) theNewGlobalEngineShouldHaveNoTriggersRegistered() error {
	if n := GetEngine().TriggerCount(); n != 0 {
		return fmt.Errorf("expected 0 triggers after reset, got %d", n)
	}
	return nil
}

func parsePriority(s string) Priority {
	switch s {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

func splitCSV(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		switch r {
		case ',':
			out = append(out, trimSpace(cur))
			cur = ""
		default:
			cur += string(r)
		}
	}
	out = append(out, trimSpace(cur))
	return out
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

func TestTriggerEngineBDD(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			c := &triggerEngineBDDContext{}

			sc.Given(`^a fresh trigger engine$`, c.aFreshTriggerEngine)
			sc.Given(`^a trigger engine with max concurrent executions of (\d+)$`, c.aTriggerEngineWithMaxConcurrentExecutionsOf)
			sc.Given(`^a trigger "([^"]*)" on event "([^"]*)" with priority "([^"]*)"$`, c.aTriggerOnEventWithPriority)
			sc.Given(`^a trigger "([^"]*)" on event "([^"]*)" with priority "([^"]*)" and a condition that requires the payload to be true$`, c.aTriggerOnEventWithPriorityAndAConditionThatRequiresThePayloadToBeTrue)
			sc.Given(`^a trigger "([^"]*)" on event "([^"]*)" with a failing first action and a succeeding second action$`, c.aTriggerOnEventWithAFailingFirstActionAndASucceedingSecondAction)
			sc.Given(`^a trigger "([^"]*)" on event "([^"]*)" with a failing action$`, c.aTriggerOnEventWithAFailingAction)
			sc.Given(`^a trigger "([^"]*)" on event "([^"]*)" with a succeeding action$`, c.aTriggerOnEventWithASucceedingAction)
			sc.Given(`^a trigger "([^"]*)" on event "([^"]*)" that blocks until released$`, c.aTriggerOnEventThatBlocksUntilReleased)
			sc.Given(`^the global engine has a trigger registered$`, c.theGlobalEngineHasATriggerRegistered)

			sc.When(`^event "([^"]*)" is emitted$`, c.eventIsEmitted)
			sc.When(`^event "([^"]*)" is emitted with payload (true|false)$`, c.eventIsEmittedWithPayload)
			sc.When(`^event "([^"]*)" is emitted (\d+) times$`, c.eventIsEmittedNTimes)
			sc.When(`^the blocked triggers are released$`, c.theBlockedTriggersAreReleased)
			sc.When(`^trigger "([^"]*)" is unregistered while it is executing$`, c.triggerIsUnregisteredWhileItIsExecuting)
			sc.When(`^the global engine is reset$`, c.theGlobalEngineIsReset)

			sc.Then(`^the triggers should have run in order "([^"]*)"$`, c.theTriggersShouldHaveRunInOrder)
			sc.Then(`^trigger "([^"]*)" should not have run$`, c.triggerShouldNotHaveRun)
			sc.Then(`^trigger "([^"]*)" should have run$`, c.triggerShouldHaveRun)
			sc.Then(`^the second action of trigger "([^"]*)" should have run$`, c.theSecondActionOfTriggerShouldHaveRun)
			sc.Then(`^at most (\d+) dispatch tasks should be executing at once$`, c.atMostNDispatchTasksShouldBeExecutingAtOnce)
			sc.Then(`^all (\d+) dispatch tasks should eventually complete$`, c.allNDispatchTasksShouldEventuallyComplete)
			sc.Then(`^the unregister call should succeed immediately$`, c.theUnregisterCallShouldSucceedImmediately)
			sc.Then(`^the new global engine should have no triggers registered$`, c.theNewGlobalEngineShouldHaveNoTriggersRegistered)
		},
		Options: &godog.Options{
			Format: "pretty",
			Paths:  []string{"features"},
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
