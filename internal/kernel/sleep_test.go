package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SleepTest struct {
	suite.Suite
}

func TestSleepSuite(t *testing.T) {
	suite.Run(t, new(SleepTest))
}

func (t *SleepTest) TestSleepWithEventNonePanics() {
	k := newTestKernel(t.T())
	k.Tick()
	assert.Panics(t.T(), func() { k.Sleep(EventNone) })
}

func (t *SleepTest) TestWakeUpPromotesSingleWaiter() {
	k := newTestKernel(t.T())
	k.Tick()

	childPid, err := k.Fork()
	t.Require().NoError(err)
	child := k.Processes.ByPid(childPid)
	k.ReadyQ.Remove(child)
	child.State = StateSleep
	child.Event = 7
	k.WaitQ.PushBack(child)

	k.WakeUp(7)

	assert.Equal(t.T(), StateReady, child.State)
	assert.Equal(t.T(), EventNone, child.Event)
	assert.True(t.T(), k.ReadyQ.Contains(child))
}

func (t *SleepTest) TestWakeUpPromotesAllMatchingWaiters() {
	k := newTestKernel(t.T())
	k.Tick()

	aPid, err := k.Fork()
	t.Require().NoError(err)
	bPid, err := k.Fork()
	t.Require().NoError(err)
	a, b := k.Processes.ByPid(aPid), k.Processes.ByPid(bPid)

	for _, p := range []*Process{a, b} {
		k.ReadyQ.Remove(p)
		p.State = StateSleep
		p.Event = 3
		k.WaitQ.PushBack(p)
	}

	k.WakeUp(3)

	assert.Equal(t.T(), StateReady, a.State)
	assert.Equal(t.T(), StateReady, b.State)
	assert.True(t.T(), k.WaitQ.Empty())
}

func (t *SleepTest) TestWakeUpClearsEventOnAlreadyReadyMembers() {
	k := newTestKernel(t.T())
	k.Tick()

	childPid, err := k.Fork()
	t.Require().NoError(err)
	child := k.Processes.ByPid(childPid)
	child.Event = 5 // still on ReadyQ from Fork, but tagged with the event

	k.WakeUp(5)

	assert.Equal(t.T(), EventNone, child.Event)
}
