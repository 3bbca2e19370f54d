// Copyright (c) 2025 The vepower developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escrownet/vepower/lvldb"
	"github.com/escrownet/vepower/staking/schedule"
	"github.com/escrownet/vepower/state"
	"github.com/escrownet/vepower/storage"
	"github.com/escrownet/vepower/vepower"
)

func newTestService(t *testing.T) (*Service, *schedule.Schedule) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := New(storage.NewContext(state.New(db)))
	sched, err := schedule.New(schedule.DefaultConfig())
	require.NoError(t, err)
	return svc, sched
}

func powerAt(t *testing.T, svc *Service, scope vepower.Address, epoch vepower.Epoch) vepower.Power {
	p, err := svc.PowerAt(scope, epoch)
	require.NoError(t, err)
	return p
}

var (
	stakerA = vepower.BytesToAddress([]byte("stakerA"))
	stakerB = vepower.BytesToAddress([]byte("stakerB"))
)

func TestPowerAt_Boundaries(t *testing.T) {
	svc, sched := newTestService(t)

	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 0))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 100))

	require.NoError(t, svc.Apply(stakerA, sched.Cliffs(100, 421, 13)))

	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 0))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 420))
	assert.Equal(t, vepower.Power(100), powerAt(t, svc, stakerA, 421))
	assert.Equal(t, vepower.Power(100), powerAt(t, svc, stakerA, 433))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 434))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 10_000))
}

func TestPowerAt_MultiTier(t *testing.T) {
	svc, sched := newTestService(t)

	require.NoError(t, svc.Apply(stakerA, sched.Cliffs(100, 500, 30)))

	assert.Equal(t, vepower.Power(130), powerAt(t, svc, stakerA, 500))
	assert.Equal(t, vepower.Power(130), powerAt(t, svc, stakerA, 503))
	assert.Equal(t, vepower.Power(115), powerAt(t, svc, stakerA, 504))
	assert.Equal(t, vepower.Power(115), powerAt(t, svc, stakerA, 516))
	assert.Equal(t, vepower.Power(100), powerAt(t, svc, stakerA, 517))
	assert.Equal(t, vepower.Power(100), powerAt(t, svc, stakerA, 529))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 530))
}

func TestApply_OverlappingSchedules(t *testing.T) {
	svc, sched := newTestService(t)

	require.NoError(t, svc.Apply(stakerA, sched.Cliffs(100, 421, 13)))
	require.NoError(t, svc.Apply(stakerA, sched.Cliffs(300, 421, 13)))

	es, err := svc.ChangeEpochs(stakerA)
	require.NoError(t, err)
	assert.Equal(t, []vepower.Epoch{421, 434}, es)
	assert.Equal(t, vepower.Power(400), powerAt(t, svc, stakerA, 421))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 434))
}

func TestRetire_FullCancellation(t *testing.T) {
	svc, sched := newTestService(t)

	cliffs := sched.Cliffs(100, 500, 30)
	require.NoError(t, svc.Apply(stakerA, cliffs))
	// a boundary at or before the grant epoch wipes the whole schedule
	require.NoError(t, svc.Retire(stakerA, cliffs, 500))

	es, err := svc.ChangeEpochs(stakerA)
	require.NoError(t, err)
	assert.Empty(t, es)
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 510))
}

func TestRetire_MidSchedule(t *testing.T) {
	svc, sched := newTestService(t)

	cliffs := sched.Cliffs(100, 421, 13)
	require.NoError(t, svc.Apply(stakerA, cliffs))
	require.NoError(t, svc.Retire(stakerA, cliffs, 425))

	assert.Equal(t, vepower.Power(100), powerAt(t, svc, stakerA, 424))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 425))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 434))

	// the realized share is cancelled at the boundary, the rest is removed
	es, err := svc.ChangeEpochs(stakerA)
	require.NoError(t, err)
	assert.Equal(t, []vepower.Epoch{421, 425}, es)

	var sum vepower.Power
	for _, e := range es {
		d, err := svc.DeltaAt(stakerA, e)
		require.NoError(t, err)
		sum += d
	}
	assert.Equal(t, vepower.Power(0), sum)
}

func TestRetireAdopt_MovesUnrealizedPower(t *testing.T) {
	svc, sched := newTestService(t)

	cliffs := sched.Cliffs(100, 500, 30)
	require.NoError(t, svc.Apply(stakerA, cliffs))

	boundary := vepower.Epoch(510)
	require.NoError(t, svc.Retire(stakerA, cliffs, boundary))
	require.NoError(t, svc.Adopt(stakerB, cliffs, boundary))

	// sender keeps the history, receiver continues the decay
	assert.Equal(t, vepower.Power(130), powerAt(t, svc, stakerA, 503))
	assert.Equal(t, vepower.Power(115), powerAt(t, svc, stakerA, 509))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 510))

	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerB, 509))
	assert.Equal(t, vepower.Power(115), powerAt(t, svc, stakerB, 510))
	assert.Equal(t, vepower.Power(100), powerAt(t, svc, stakerB, 517))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerB, 530))
}

func TestAdvanceCheckpoint(t *testing.T) {
	svc, sched := newTestService(t)

	require.NoError(t, svc.Apply(stakerA, sched.Cliffs(100, 500, 30)))

	cp, err := svc.AdvanceCheckpoint(stakerA, 510, 600)
	require.NoError(t, err)
	assert.Equal(t, vepower.Epoch(504), cp.Epoch)
	assert.Equal(t, uint64(1), cp.Index)

	// materialized entries hold running sums now
	d, err := svc.DeltaAt(stakerA, 504)
	require.NoError(t, err)
	assert.Equal(t, vepower.Power(115), d)

	// queries below and above the checkpoint agree with the raw timeline
	assert.Equal(t, vepower.Power(130), powerAt(t, svc, stakerA, 502))
	assert.Equal(t, vepower.Power(115), powerAt(t, svc, stakerA, 510))
	assert.Equal(t, vepower.Power(100), powerAt(t, svc, stakerA, 520))
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 531))

	// advance the tail
	cp, err = svc.AdvanceCheckpoint(stakerA, 599, 600)
	require.NoError(t, err)
	assert.Equal(t, vepower.Epoch(530), cp.Epoch)
	assert.Equal(t, uint64(3), cp.Index)
	assert.Equal(t, vepower.Power(0), powerAt(t, svc, stakerA, 599))
}

func TestAdvanceCheckpoint_Temporal(t *testing.T) {
	svc, sched := newTestService(t)

	require.NoError(t, svc.Apply(stakerA, sched.Cliffs(100, 500, 30)))

	// not yet elapsed
	_, err := svc.AdvanceCheckpoint(stakerA, 600, 600)
	assert.ErrorIs(t, err, ErrNotYetElapsed)
	_, err = svc.AdvanceCheckpoint(stakerA, 601, 600)
	assert.ErrorIs(t, err, ErrNotYetElapsed)

	// nothing recorded at or before target
	_, err = svc.AdvanceCheckpoint(stakerA, 499, 600)
	assert.ErrorIs(t, err, ErrAlreadyCalculated)

	_, err = svc.AdvanceCheckpoint(stakerA, 510, 600)
	require.NoError(t, err)

	// idempotence: the same target fails the second time
	_, err = svc.AdvanceCheckpoint(stakerA, 510, 600)
	assert.ErrorIs(t, err, ErrAlreadyCalculated)
	_, err = svc.AdvanceCheckpoint(stakerA, 504, 600)
	assert.ErrorIs(t, err, ErrAlreadyCalculated)

	// a later target works once it uncovers new entries
	_, err = svc.AdvanceCheckpoint(stakerA, 516, 600)
	assert.ErrorIs(t, err, ErrAlreadyCalculated)
	_, err = svc.AdvanceCheckpoint(stakerA, 517, 600)
	require.NoError(t, err)
}

func TestAdvanceCheckpoint_EmptyScope(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AdvanceCheckpoint(stakerA, 10, 100)
	assert.ErrorIs(t, err, ErrAlreadyCalculated)
}

func TestGlobalTimeline(t *testing.T) {
	svc, sched := newTestService(t)

	require.NoError(t, svc.Apply(GlobalScope, sched.Cliffs(100, 421, 13)))
	require.NoError(t, svc.Apply(GlobalScope, sched.Cliffs(200, 425, 26)))

	total, err := svc.TotalPowerAt(421)
	require.NoError(t, err)
	assert.Equal(t, vepower.Power(100), total)

	total, err = svc.TotalPowerAt(425)
	require.NoError(t, err)
	assert.Equal(t, vepower.Power(100+230), total)

	cp, err := svc.AdvanceGlobalCheckpoint(430, 600)
	require.NoError(t, err)
	assert.Equal(t, vepower.Epoch(425), cp.Epoch)

	total, err = svc.TotalPowerAt(10_000)
	require.NoError(t, err)
	assert.Equal(t, vepower.Power(0), total)
}
