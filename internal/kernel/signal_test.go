package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SignalTest struct {
	suite.Suite
}

func TestSignalSuite(t *testing.T) {
	suite.Run(t, new(SignalTest))
}

func (t *SignalTest) TestSendSignalWakesSleepingTarget() {
	k := newTestKernel(t.T())
	k.Tick()

	childPid, err := k.Fork()
	t.Require().NoError(err)
	child := k.Processes.ByPid(childPid)

	k.ReadyQ.Remove(child)
	child.State = StateSleep
	child.Event = 42
	k.WaitQ.PushBack(child)

	err = k.sendSignal(child, SIGTERM)
	t.Require().NoError(err)

	assert.Equal(t.T(), StateReady, child.State)
	assert.True(t.T(), k.ReadyQ.Contains(child))
	assert.NotZero(t.T(), child.Signals&(1<<SIGTERM))
}

func (t *SignalTest) TestSendSignalOutOfRangeReturnsError() {
	k := newTestKernel(t.T())
	k.Tick()
	assert.ErrorIs(t.T(), k.sendSignal(k.Current, -1), ErrBadSignal)
	assert.ErrorIs(t.T(), k.sendSignal(k.Current, NumSignals), ErrBadSignal)
}

func (t *SignalTest) TestCheckPendingSignalsDefaultTermRunsExit() {
	k := newTestKernel(t.T())
	k.Tick() // Current = init (pid 1)

	childPid, err := k.Fork()
	t.Require().NoError(err)
	child := k.Processes.ByPid(childPid)
	t.Require().NoError(k.sendSignal(child, SIGTERM))

	k.checkPendingSignals(child)

	assert.Equal(t.T(), StateKilled, child.State)
	assert.True(t.T(), k.ZombieQ.Contains(child))
}

func (t *SignalTest) TestCheckPendingSignalsIgnoredHandlerSkipsDefault() {
	k := newTestKernel(t.T())
	k.Tick()

	childPid, err := k.Fork()
	t.Require().NoError(err)
	child := k.Processes.ByPid(childPid)
	child.Handlers[SIGTERM] = SigHandler{Kind: HandlerIgnore}
	t.Require().NoError(k.sendSignal(child, SIGTERM))

	k.checkPendingSignals(child)

	assert.NotEqual(t.T(), StateKilled, child.State)
}

func (t *SignalTest) TestSIGSTOPParksProcessOnWaitQWithFGPausedEvent() {
	k := newTestKernel(t.T())
	k.Tick()

	childPid, err := k.Fork()
	t.Require().NoError(err)
	child := k.Processes.ByPid(childPid)
	t.Require().NoError(k.sendSignal(child, SIGSTOP))

	k.checkPendingSignals(child)

	assert.Equal(t.T(), StateSleep, child.State)
	assert.Equal(t.T(), EventFGPaused, child.Event)
	assert.True(t.T(), k.WaitQ.Contains(child))
	assert.False(t.T(), k.ReadyQ.Contains(child))
}

func (t *SignalTest) TestSIGKILLAlwaysExitsRegardlessOfHandler() {
	k := newTestKernel(t.T())
	k.Tick()

	childPid, err := k.Fork()
	t.Require().NoError(err)
	child := k.Processes.ByPid(childPid)
	child.Handlers[SIGKILL] = SigHandler{Kind: HandlerIgnore}
	t.Require().NoError(k.sendSignal(child, SIGKILL))

	k.checkPendingSignals(child)

	assert.Equal(t.T(), StateKilled, child.State)
}

func (t *SignalTest) TestUserHandlerDeliveryClearsHandlerAfterOneShot() {
	k := newTestKernel(t.T())
	k.Tick()

	childPid, err := k.Fork()
	t.Require().NoError(err)
	child := k.Processes.ByPid(childPid)
	child.Handlers[SIGINT] = SigHandler{Kind: HandlerUser, Addr: 0x1234}
	t.Require().NoError(k.sendSignal(child, SIGINT))

	k.checkPendingSignals(child)

	assert.Equal(t.T(), uint64(0x1234), child.RegContext.ELR)
	assert.Equal(t.T(), uint64(SIGINT), child.RegContext.X1)
	assert.Equal(t.T(), HandlerKind(HandlerDefault), child.Handlers[SIGINT].Kind)
}
