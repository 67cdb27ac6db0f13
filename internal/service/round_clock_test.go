package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ColorWinApi/internal/models"
)

type fakeScheduler struct {
	mu       sync.Mutex
	requests []settleJob
}

func (f *fakeScheduler) Enqueue(duration string, periodNumber int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, settleJob{Duration: duration, PeriodNumber: periodNumber})
}

func (f *fakeScheduler) all() []settleJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]settleJob(nil), f.requests...)
}

func newTestClock(token string, lastSettled int64) (*RoundClock, *fakeScheduler, *fakeHub) {
	results := &fakeResultStore{}
	if lastSettled > 0 {
		results.InsertIfAbsent(&models.GameResult{
			Duration: token, PeriodNumber: lastSettled,
			WinningNumber: 5, WinningColor: ColorViolet, WinningSize: SizeBig,
		})
	}
	scheduler := &fakeScheduler{}
	hub := &fakeHub{}
	rc := NewRoundClock(token, results, hub, scheduler)
	return rc, scheduler, hub
}

func TestCurrentPeriodNumber(t *testing.T) {
	windowMs := time.Minute.Milliseconds()

	assert.Equal(t, int64(1), currentPeriodNumber(0, windowMs))
	assert.Equal(t, int64(1), currentPeriodNumber(windowMs-1, windowMs))
	assert.Equal(t, int64(2), currentPeriodNumber(windowMs, windowMs))

	// Advancing by exactly one window advances the period by exactly one,
	// and the counter never goes backwards.
	prev := int64(0)
	for nowMs := int64(0); nowMs < 10*windowMs; nowMs += 500 {
		period := currentPeriodNumber(nowMs, windowMs)
		assert.GreaterOrEqual(t, period, prev)
		assert.Equal(t, period+1, currentPeriodNumber(nowMs+windowMs, windowMs))
		prev = period
	}
}

func TestRemainingInWindowBounds(t *testing.T) {
	windowMs := (3 * time.Minute).Milliseconds()

	assert.Equal(t, windowMs, RemainingInWindow(0, windowMs))
	assert.Equal(t, int64(1), RemainingInWindow(windowMs-1, windowMs))
	assert.Equal(t, windowMs, RemainingInWindow(windowMs, windowMs))

	for nowMs := int64(0); nowMs < 5*windowMs; nowMs += 777 {
		remaining := RemainingInWindow(nowMs, windowMs)
		assert.Greater(t, remaining, int64(0))
		assert.LessOrEqual(t, remaining, windowMs)
	}
}

func TestTickMidWindowOnlyBroadcasts(t *testing.T) {
	rc, scheduler, hub := newTestClock("1min", 41)
	rc.now = func() time.Time { return time.UnixMilli(30_000) }

	rc.Tick()

	assert.Empty(t, scheduler.all())
	require.Len(t, hub.timers, 1)
	assert.Equal(t, int64(30_000), hub.timers[0])
}

func TestTickAtBoundaryRequestsNextPeriod(t *testing.T) {
	rc, scheduler, hub := newTestClock("1min", 41)
	rc.now = func() time.Time { return time.UnixMilli(59_500) }

	rc.Tick()

	require.Len(t, hub.timers, 1)
	assert.Equal(t, int64(500), hub.timers[0])

	// The boundary tick requests the closing period and re-requests the
	// last settled one so a half-paid period gets repaired.
	requests := scheduler.all()
	require.Len(t, requests, 2)
	assert.Equal(t, settleJob{Duration: "1min", PeriodNumber: 41}, requests[0])
	assert.Equal(t, settleJob{Duration: "1min", PeriodNumber: 42}, requests[1])
}

func TestTickOverSignalsSamePeriod(t *testing.T) {
	// Repeated boundary ticks re-request the same periods; deduplication is
	// the engine's job, not the clock's.
	rc, scheduler, _ := newTestClock("1min", 41)

	nowMs := int64(59_100)
	rc.now = func() time.Time { return time.UnixMilli(nowMs) }
	rc.Tick()
	nowMs = 59_900
	rc.Tick()

	requests := scheduler.all()
	require.Len(t, requests, 4)
	assert.Equal(t, requests[0], requests[2])
	assert.Equal(t, requests[1], requests[3])
}

func TestBoundaryTickRepairsPartialSettlement(t *testing.T) {
	// A crash after the result insert leaves winning bets pending behind an
	// existing result. The next boundary tick must get them paid through
	// the regular clock -> engine path.
	bets := &fakeBetLedger{}
	wallet := newFakeWalletLedger()
	results := &fakeResultStore{}
	hub := &fakeHub{}

	_, err := results.InsertIfAbsent(&models.GameResult{
		Duration: "1min", PeriodNumber: 41,
		WinningNumber: 7, WinningColor: ColorRed, WinningSize: SizeBig,
	})
	require.NoError(t, err)
	bets.add(models.Bet{UserID: 1, Duration: "1min", PeriodNumber: 41,
		BetType: models.BetTypeColor, BetValue: ColorRed, Amount: 50})

	engine := NewSettlementEngine(bets, wallet, results, hub, nil)
	engine.Start()

	rc := NewRoundClock("1min", results, hub, engine)
	rc.now = func() time.Time { return time.UnixMilli(59_500) }
	rc.Tick()

	require.Eventually(t, func() bool {
		pending, err := bets.HasPendingBets("1min", 41)
		return err == nil && !pending && wallet.count(1) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.InDelta(t, 50*WinMultiplier, wallet.total(1), 1e-9)

	// The tick also settles the closing period 42.
	require.Eventually(t, func() bool {
		return results.countFor("1min", 42) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTickWithNoHistoryRequestsPeriodOne(t *testing.T) {
	rc, scheduler, _ := newTestClock("5min", 0)
	rc.now = func() time.Time { return time.UnixMilli((5 * time.Minute).Milliseconds() - 200) }

	rc.Tick()

	requests := scheduler.all()
	require.Len(t, requests, 1)
	assert.Equal(t, int64(1), requests[0].PeriodNumber)
}
