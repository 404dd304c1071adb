package session

import (
	"sync"
	"time"

	"backend-rucktracker/internal/telemetry"
)

// Engine wraps a Tracker in a single goroutine so fixes, commands and
// idle-check ticks are processed as one ordered event stream. A fix
// acceptance and an idle auto-end can never race for the same instant.
type Engine struct {
	tracker  *Tracker
	cmds     chan command
	done     chan struct{}
	stopOnce sync.Once
	notify   func(Result)
	tick     time.Duration
}

type command struct {
	run   func() any
	reply chan any
}

// defaultTick is how often the engine re-checks the idle timeout between
// fixes.
const defaultTick = 5 * time.Second

// NewEngine starts the event loop. notify, when non-nil, receives every
// result that carries a lifecycle event (fan-out to websocket clients);
// it is invoked from the loop goroutine and must not block.
func NewEngine(tracker *Tracker, notify func(Result)) *Engine {
	return newEngine(tracker, notify, defaultTick)
}

func newEngine(tracker *Tracker, notify func(Result), tick time.Duration) *Engine {
	e := &Engine{
		tracker: tracker,
		cmds:    make(chan command, 16),
		done:    make(chan struct{}),
		notify:  notify,
		tick:    tick,
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-e.cmds:
			cmd.reply <- cmd.run()
		case <-ticker.C:
			if r := e.tracker.CheckIdle(); r != nil {
				e.emit(*r)
			}
		case <-e.done:
			return
		}
	}
}

func (e *Engine) emit(r Result) {
	if e.notify != nil && r.Event != nil {
		e.notify(r)
	}
}

func (e *Engine) do(run func() any) any {
	cmd := command{run: run, reply: make(chan any, 1)}
	select {
	case e.cmds <- cmd:
	case <-e.done:
		return nil
	}

	// the loop may shut down between accepting the command and running
	// it; never block on a reply that will not come
	select {
	case v := <-cmd.reply:
		return v
	case <-e.done:
		select {
		case v := <-cmd.reply:
			return v
		default:
			return nil
		}
	}
}

// SubmitFix forwards one fix into the loop and returns its outcome.
func (e *Engine) SubmitFix(fix telemetry.LocationFix) Result {
	v := e.do(func() any {
		r := e.tracker.SubmitFix(fix)
		e.emit(r)
		return r
	})
	if v == nil {
		return e.tracker.ignored(reasonSessionEnded)
	}
	return v.(Result)
}

// Pause, Resume and ConfirmIdleEnd mirror the tracker commands.
func (e *Engine) Pause() (Result, error) {
	return e.resultErr(func() (Result, error) { return e.tracker.Pause() })
}

func (e *Engine) Resume() (Result, error) {
	return e.resultErr(func() (Result, error) { return e.tracker.Resume() })
}

func (e *Engine) ConfirmIdleEnd(end bool) (Result, error) {
	return e.resultErr(func() (Result, error) { return e.tracker.ConfirmIdleEnd(end) })
}

type resultOrErr struct {
	result Result
	err    error
}

func (e *Engine) resultErr(fn func() (Result, error)) (Result, error) {
	v := e.do(func() any {
		r, err := fn()
		if err == nil {
			e.emit(r)
		}
		return resultOrErr{result: r, err: err}
	})
	if v == nil {
		return Result{}, ErrSessionEnded
	}
	re := v.(resultOrErr)
	return re.result, re.err
}

// Stop finalizes the session and shuts the loop down. Safe to call more
// than once; later calls return the same finalized result.
func (e *Engine) Stop() FinalizedSession {
	v := e.do(func() any {
		final := e.tracker.Stop()
		e.emit(Result{
			SessionID: final.ID,
			Event:     &LifecycleEvent{Kind: EventEnded, Reason: string(final.Reason), State: StateEnded},
			Snapshot:  e.tracker.acc.Snapshot(),
			State:     StateEnded,
		})
		return final
	})
	if v == nil {
		return *e.tracker.final
	}

	e.stopOnce.Do(func() { close(e.done) })
	return v.(FinalizedSession)
}

// Snapshot returns the current display state through the loop.
func (e *Engine) Snapshot() SnapshotView {
	v := e.do(func() any { return e.tracker.Snapshot() })
	if v == nil {
		return e.tracker.Snapshot()
	}
	return v.(SnapshotView)
}
