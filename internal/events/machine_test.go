package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	signIn       Kind = "sign_in"
	balances     Kind = "get_balances"
	transactions Kind = "get_transactions"
)

// manualScheduler records armed timers; tests fire ticks by hand.
type manualScheduler struct {
	armed int
	tick  func() bool
}

func (s *manualScheduler) Every(_ time.Duration, tick func() bool) {
	s.armed++
	s.tick = tick
}

// queueExecutor holds units until the test runs them.
type queueExecutor struct {
	units  []func()
	closed bool
}

func (e *queueExecutor) Go(fn func()) bool {
	if e.closed {
		return false
	}
	e.units = append(e.units, fn)
	return true
}

func (e *queueExecutor) runAll() {
	units := e.units
	e.units = nil
	for _, u := range units {
		u()
	}
}

type harness struct {
	m        *Machine[string]
	sched    *manualScheduler
	exec     *queueExecutor
	applied  []Kind
	statuses map[Kind]Status
	rebuilds int
	results  map[Kind]error
	calls    map[Kind]int
}

func newHarness() *harness {
	h := &harness{
		sched:    &manualScheduler{},
		exec:     &queueExecutor{},
		statuses: make(map[Kind]Status),
		results:  make(map[Kind]error),
		calls:    make(map[Kind]int),
	}
	h.m = New(Config[string]{
		Work: func(_ context.Context, kind Kind, snapshot string) ([]byte, error) {
			h.calls[kind]++
			if err := h.results[kind]; err != nil {
				return nil, err
			}
			return []byte(string(kind) + ":" + snapshot), nil
		},
		Executor:  h.exec,
		Scheduler: h.sched,
		Apply: func(kind Kind, st Status) {
			h.applied = append(h.applied, kind)
			h.statuses[kind] = st
		},
		Rebuild: func() { h.rebuilds++ },
	})
	return h
}

func TestDispatchMarksInProgressAndArmsTimer(t *testing.T) {
	h := newHarness()

	require.True(t, h.m.Dispatch("token", signIn))

	assert.True(t, h.m.InFlight(signIn))
	assert.True(t, h.m.Armed())
	assert.Equal(t, 1, h.sched.armed)
	assert.Len(t, h.exec.units, 1)
	h.m.slot.modify(func(s map[Kind]Status) {
		assert.Equal(t, InProgress, s[signIn].State)
	})
}

func TestTickContinuesWhileInProgress(t *testing.T) {
	h := newHarness()
	h.m.Dispatch("", signIn)

	assert.True(t, h.m.Tick())
	assert.Empty(t, h.applied)
	assert.Zero(t, h.rebuilds)
}

func TestExclusiveInFlight(t *testing.T) {
	h := newHarness()

	assert.True(t, h.m.Dispatch("", signIn))
	assert.False(t, h.m.Dispatch("", signIn))

	assert.Len(t, h.exec.units, 1)
	assert.Equal(t, 1, h.sched.armed)
}

func TestDispatchRejectedWhenAnyKindBusy(t *testing.T) {
	h := newHarness()
	require.True(t, h.m.Dispatch("", balances))

	assert.False(t, h.m.Dispatch("", balances, transactions))
	assert.False(t, h.m.InFlight(transactions))
	assert.Len(t, h.exec.units, 1)
}

func TestDispatchDeduplicatesKinds(t *testing.T) {
	h := newHarness()

	require.True(t, h.m.Dispatch("", balances, balances, transactions))
	assert.Len(t, h.exec.units, 2)
	assert.False(t, h.m.Dispatch(""))
}

func TestDoubleSignInResolvesOnce(t *testing.T) {
	h := newHarness()

	require.True(t, h.m.Dispatch("public", signIn))
	require.False(t, h.m.Dispatch("public", signIn))

	h.exec.runAll()
	assert.False(t, h.m.Tick())

	assert.Equal(t, []Kind{signIn}, h.applied)
	assert.Equal(t, 1, h.calls[signIn])
	assert.Equal(t, 1, h.rebuilds)
	assert.Equal(t, Done, h.statuses[signIn].State)
	assert.Equal(t, "sign_in:public", string(h.statuses[signIn].Payload))
	assert.False(t, h.m.Armed())
}

func TestSimultaneousCompletionsRebuildOnce(t *testing.T) {
	h := newHarness()
	h.results[transactions] = errors.New("ITEM_LOGIN_REQUIRED")
	require.True(t, h.m.Dispatch("tok", balances, transactions))

	h.exec.runAll()
	assert.False(t, h.m.Tick())

	assert.Equal(t, []Kind{balances, transactions}, h.applied)
	assert.Equal(t, 1, h.rebuilds)
	assert.Equal(t, Failed, h.statuses[transactions].State)
	assert.Equal(t, "ITEM_LOGIN_REQUIRED", h.statuses[transactions].Err)
}

func TestDrainOnceAcrossTicks(t *testing.T) {
	h := newHarness()
	h.m.Dispatch("", signIn)
	h.exec.runAll()

	h.m.Tick()
	h.m.Tick()
	h.m.Tick()

	assert.Len(t, h.applied, 1)
	assert.Equal(t, 1, h.rebuilds)
}

func TestPartialCompletionKeepsTimerArmed(t *testing.T) {
	h := newHarness()
	h.m.Dispatch("", balances, transactions)

	first := h.exec.units[0]
	h.exec.units = h.exec.units[1:]
	first()

	assert.True(t, h.m.Tick())
	assert.Equal(t, []Kind{balances}, h.applied)
	assert.Equal(t, 1, h.rebuilds)

	h.exec.runAll()
	assert.False(t, h.m.Tick())
	assert.Equal(t, []Kind{balances, transactions}, h.applied)
	assert.Equal(t, 2, h.rebuilds)
}

func TestContendedSlotIsNotReady(t *testing.T) {
	h := newHarness()
	h.m.Dispatch("", signIn)
	h.exec.runAll()

	h.m.slot.mu.Lock()
	assert.True(t, h.m.Tick())
	h.m.slot.mu.Unlock()
	assert.Empty(t, h.applied)

	assert.False(t, h.m.Tick())
	assert.Len(t, h.applied, 1)
}

func TestPanickingWorkFails(t *testing.T) {
	h := newHarness()
	h.m.cfg.Work = func(context.Context, Kind, string) ([]byte, error) {
		panic("decoder exploded")
	}
	h.m.Dispatch("", signIn)
	h.exec.runAll()
	h.m.Tick()

	require.Contains(t, h.statuses, signIn)
	assert.Equal(t, Failed, h.statuses[signIn].State)
	assert.Contains(t, h.statuses[signIn].Err, "decoder exploded")
}

func TestRedispatchAfterDrainRearms(t *testing.T) {
	h := newHarness()
	h.m.Dispatch("", signIn)
	h.exec.runAll()
	require.False(t, h.m.Tick())

	require.True(t, h.m.Dispatch("", signIn))
	assert.Equal(t, 2, h.sched.armed)
	assert.True(t, h.m.Armed())
}

func TestApplyMayDispatchFollowUps(t *testing.T) {
	h := newHarness()
	h.m.cfg.Apply = func(kind Kind, st Status) {
		h.applied = append(h.applied, kind)
		if kind == signIn {
			h.m.Dispatch("tok", balances, transactions)
		}
	}
	h.m.Dispatch("", signIn)
	h.exec.runAll()

	assert.True(t, h.m.Tick(), "follow-up requests keep the timer alive")
	assert.Equal(t, 1, h.sched.armed)
	assert.Equal(t, 1, h.rebuilds)

	h.exec.runAll()
	assert.False(t, h.m.Tick())
	assert.Equal(t, []Kind{signIn, balances, transactions}, h.applied)
	assert.Equal(t, 2, h.rebuilds)
}

func TestWorkTimeout(t *testing.T) {
	h := newHarness()
	h.m.cfg.Timeout = time.Millisecond
	h.m.cfg.Work = func(ctx context.Context, _ Kind, _ string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	h.m.Dispatch("", signIn)
	h.exec.runAll()
	h.m.Tick()

	assert.Equal(t, Failed, h.statuses[signIn].State)
	assert.Equal(t, context.DeadlineExceeded.Error(), h.statuses[signIn].Err)
}

func TestRefusedUnitFailsAndFreesKind(t *testing.T) {
	h := newHarness()
	h.exec.closed = true

	require.True(t, h.m.Dispatch("", signIn))
	assert.Empty(t, h.exec.units)
	assert.False(t, h.m.Tick())

	assert.Equal(t, []Kind{signIn}, h.applied)
	assert.Equal(t, Failed, h.statuses[signIn].State)
	assert.Equal(t, ErrRefused.Error(), h.statuses[signIn].Err)
	assert.Zero(t, h.calls[signIn])

	h.exec.closed = false
	assert.True(t, h.m.Dispatch("", signIn))
}

func TestDispatchDoesNotWaitOnBusySlot(t *testing.T) {
	h := newHarness()

	h.m.slot.mu.Lock()
	assert.False(t, h.m.Dispatch("", signIn))
	assert.True(t, h.m.InFlight(signIn))
	h.m.slot.mu.Unlock()

	assert.Empty(t, h.exec.units)
	assert.False(t, h.m.Armed())
	assert.False(t, h.m.InFlight(signIn))
	assert.True(t, h.m.Dispatch("", signIn))
}
