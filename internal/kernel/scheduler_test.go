package kernel

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SchedulerTest struct {
	suite.Suite
}

func TestSchedulerSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTest))
}

func (t *SchedulerTest) TestTickPublishesReadyQueueDepthAfterDispatch() {
	k := newTestKernel(t.T())
	k.Tick() // dispatch init, draining the ready queue to 0

	assert.Equal(t.T(), float64(0), testutil.ToFloat64(k.metrics.ReadyQueueDepth))

	childPid, err := k.Fork()
	t.Require().NoError(err)
	_, err = k.Fork()
	t.Require().NoError(err)
	t.Require().True(k.ReadyQ.Contains(k.Processes.ByPid(childPid)))

	k.Yield() // requeues Current (init) and dispatches the next ready process

	// one of the two forked children plus the requeued init remain ready.
	assert.Equal(t.T(), float64(k.ReadyQ.Len()), testutil.ToFloat64(k.metrics.ReadyQueueDepth))
}

func (t *SchedulerTest) TestYieldReschedulesEvenWithEmptyReadyQueue() {
	k := newTestKernel(t.T())
	k.Tick()
	t.Require().True(k.ReadyQ.Empty())

	k.Yield()

	assert.Equal(t.T(), 1, k.Current.Pid) // init requeued itself and was immediately redispatched
}
