// Package events tracks outstanding asynchronous requests and bridges their
// completion from background goroutines to the UI goroutine.
//
// Background units only ever write a terminal Status into a mutex-guarded
// slot. The UI goroutine polls that slot from a recurring timer, drains
// terminal statuses, applies them to business state and then requests a
// single rebuild per tick.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-viewer/internal/logger"
)

// ErrRefused is the failure recorded for a unit the executor would not run.
var ErrRefused = errors.New("events: executor refused request")

// Work performs the request for kind given a snapshot of business state taken
// at dispatch time. The returned payload is opaque to the machine.
type Work[S any] func(ctx context.Context, kind Kind, snapshot S) ([]byte, error)

// Scheduler arms a recurring callback on the UI goroutine. The callback keeps
// firing every interval until it returns false.
type Scheduler interface {
	Every(interval time.Duration, tick func() bool)
}

// Config wires a Machine to its collaborators.
type Config[S any] struct {
	Work      Work[S]
	Executor  Executor
	Scheduler Scheduler
	// Apply receives each drained terminal status exactly once.
	Apply func(kind Kind, status Status)
	// Rebuild runs once per tick that drained anything, after all Apply calls.
	Rebuild func()

	Interval time.Duration
	Timeout  time.Duration
	Context  context.Context
	Logger   logger.Logger
}

// Machine is the request state machine. Dispatch and Tick must be called from
// the UI goroutine; background units touch only the shared slot.
type Machine[S any] struct {
	cfg   Config[S]
	slot  *slot
	armed bool
}

// New creates a machine. The poll interval defaults to one second; a zero
// Timeout leaves units bounded only by Context.
func New[S any](cfg Config[S]) *Machine[S] {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Apply == nil {
		cfg.Apply = func(Kind, Status) {}
	}
	if cfg.Rebuild == nil {
		cfg.Rebuild = func() {}
	}
	return &Machine[S]{cfg: cfg, slot: newSlot()}
}

// Dispatch starts one background unit per kind. It is rejected, returning
// false, when any requested kind is already in progress. It never waits on
// the slot: if a unit is writing its status right now, the dispatch is
// rejected like a busy one and the caller may try again.
func (m *Machine[S]) Dispatch(snapshot S, kinds ...Kind) bool {
	kinds = dedupe(kinds)
	if len(kinds) == 0 {
		return false
	}

	accepted := false
	locked := m.slot.tryModify(func(statuses map[Kind]Status) {
		for _, k := range kinds {
			if statuses[k].State == InProgress {
				return
			}
		}
		for _, k := range kinds {
			statuses[k] = Status{State: InProgress}
		}
		accepted = true
	})
	if !locked {
		m.cfg.Logger.Debug("EventMachine", "dispatch rejected, status slot busy", map[string]interface{}{
			"kinds": kinds,
		})
		return false
	}
	if !accepted {
		m.cfg.Logger.Debug("EventMachine", "dispatch rejected, request already in flight", map[string]interface{}{
			"kinds": kinds,
		})
		return false
	}

	for _, k := range kinds {
		kind := k
		if !m.cfg.Executor.Go(func() { m.run(kind, snapshot) }) {
			m.refuse(kind)
		}
	}
	m.cfg.Logger.Info("EventMachine", "requests dispatched", map[string]interface{}{
		"kinds": kinds,
	})

	if !m.armed {
		m.armed = true
		m.cfg.Scheduler.Every(m.cfg.Interval, m.Tick)
	}
	return true
}

// refuse records the terminal status of a unit the executor would not run.
// A contended slot hands the write to a goroutine, as a unit would do it.
func (m *Machine[S]) refuse(kind Kind) {
	m.cfg.Logger.Warning("EventMachine", "executor refused request", map[string]interface{}{
		"kind": string(kind),
	})
	write := func(statuses map[Kind]Status) {
		statuses[kind] = Status{State: Failed, Err: ErrRefused.Error()}
	}
	if !m.slot.tryModify(write) {
		go m.slot.modify(write)
	}
}

// run executes one unit and records exactly one terminal status for it.
func (m *Machine[S]) run(kind Kind, snapshot S) {
	status := Status{State: Failed}
	defer func() {
		if r := recover(); r != nil {
			status = Status{State: Failed, Err: fmt.Sprintf("request panicked: %v", r)}
		}
		m.slot.modify(func(statuses map[Kind]Status) {
			statuses[kind] = status
		})
	}()

	ctx := m.cfg.Context
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	payload, err := m.cfg.Work(ctx, kind, snapshot)
	if err != nil {
		status = Status{State: Failed, Err: err.Error()}
		return
	}
	status = Status{State: Done, Payload: payload}
}

// Tick drains terminal statuses. It returns true while anything is still
// tracked; a contended slot counts as not ready yet.
func (m *Machine[S]) Tick() bool {
	type drained struct {
		kind   Kind
		status Status
	}
	var ready []drained

	ok := m.slot.tryModify(func(statuses map[Kind]Status) {
		for k, s := range statuses {
			if s.Terminal() {
				ready = append(ready, drained{kind: k, status: s})
				delete(statuses, k)
			}
		}
	})
	if !ok {
		m.cfg.Logger.Debug("EventMachine", "status slot busy, retrying next tick", nil)
		return true
	}

	if len(ready) > 0 {
		kinds := make([]Kind, len(ready))
		byKind := make(map[Kind]Status, len(ready))
		for i, d := range ready {
			kinds[i] = d.kind
			byKind[d.kind] = d.status
		}
		for _, k := range sortedKinds(kinds) {
			st := byKind[k]
			if st.State == Failed {
				m.cfg.Logger.Warning("EventMachine", "request failed", map[string]interface{}{
					"kind":  string(k),
					"error": st.Err,
				})
			}
			m.cfg.Apply(k, st)
		}
		m.cfg.Rebuild()
	}

	pending := true
	if m.slot.tryModify(func(statuses map[Kind]Status) { pending = len(statuses) > 0 }) && !pending {
		m.armed = false
		return false
	}
	return true
}

// Armed reports whether the poll timer is running.
func (m *Machine[S]) Armed() bool {
	return m.armed
}

// InFlight reports whether kind has been dispatched and not yet drained. A
// contended slot reports true, matching a rejected Dispatch.
func (m *Machine[S]) InFlight(kind Kind) bool {
	inFlight := true
	m.slot.tryModify(func(statuses map[Kind]Status) {
		_, inFlight = statuses[kind]
	})
	return inFlight
}

func dedupe(kinds []Kind) []Kind {
	seen := make(map[Kind]bool, len(kinds))
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
