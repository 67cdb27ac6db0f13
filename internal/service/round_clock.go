package service

import (
	"time"

	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
)

// clockTickInterval is how often every lane broadcasts its countdown and
// checks for the window boundary.
const clockTickInterval = time.Second

// settlementScheduler is the clock's view of the engine: requests are
// submitted, never awaited.
type settlementScheduler interface {
	Enqueue(duration string, periodNumber int64)
}

// RoundClock drives one duration lane. The active period and the remaining
// time are pure functions of wall-clock time, so a restart mid-window picks
// up in the right place with no persisted countdown state. The period a
// settlement is requested for, however, is always lastSettled+1 from the
// result store, which keeps period numbers monotonic and gap-free even when
// ticks are missed or delayed.
type RoundClock struct {
	token     string
	window    time.Duration
	results   ResultStore
	hub       ResultBroadcaster
	scheduler settlementScheduler
	now       func() time.Time
}

func NewRoundClock(token string, results ResultStore, hub ResultBroadcaster,
	scheduler settlementScheduler) *RoundClock {

	return &RoundClock{
		token:     token,
		window:    models.GameDurations[token],
		results:   results,
		hub:       hub,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// currentPeriodNumber maps a wall-clock instant to a 1-based period counter
// for the given window length. The authoritative period numbering hangs off
// the result store (lastSettled+1); this time-derived counter exists to pin
// down the window arithmetic the clock is built on.
func currentPeriodNumber(nowMs, windowMs int64) int64 {
	return nowMs/windowMs + 1
}

// RemainingInWindow returns how many milliseconds of the active window are
// left, in (0, windowMs].
func RemainingInWindow(nowMs, windowMs int64) int64 {
	return windowMs - nowMs%windowMs
}

// Tick broadcasts the countdown and, when the window is about to close,
// requests settlement of the next unsettled period. The boundary condition
// can hold across consecutive ticks; over-signalling is fine because the
// engine dedups.
func (rc *RoundClock) Tick() {
	nowMs := rc.now().UnixMilli()
	windowMs := rc.window.Milliseconds()

	remaining := RemainingInWindow(nowMs, windowMs)
	rc.hub.BroadcastTimerUpdate(rc.token, remaining)

	if remaining <= clockTickInterval.Milliseconds() {
		lastSettled, err := rc.results.LastSettledPeriod(rc.token)
		if err != nil {
			// The lane keeps ticking; the period stays unsettled and the
			// next eligible tick retries.
			logger.Error("Unable to read last settled period for %s: %v", rc.token, err)
			return
		}

		// Re-signal the last settled period too. A crash between its result
		// insert and its payout loop leaves bets pending behind an existing
		// result, and only a fresh settlement request can repair that; when
		// the period is fully settled the engine no-ops the request.
		if lastSettled > 0 {
			rc.scheduler.Enqueue(rc.token, lastSettled)
		}
		rc.scheduler.Enqueue(rc.token, lastSettled+1)
	}
}

// Run ticks the lane until stop is closed.
func (rc *RoundClock) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(clockTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rc.Tick()
		case <-stop:
			return
		}
	}
}

// SuperviseRoundClock keeps a lane's clock running across panics, the same
// way the game loops in this codebase are supervised.
func SuperviseRoundClock(rc *RoundClock, stop <-chan struct{}) {
	for {
		logger.Info("Starting round clock for %s", rc.token)

		done := make(chan bool)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Round clock for %s panicked: %v", rc.token, r)
					done <- true
				}
			}()

			rc.Run(stop)
			done <- false
		}()

		if restart := <-done; !restart {
			return
		}

		time.Sleep(5 * time.Second)
	}
}

// StartGameLanes launches every configured duration lane.
func StartGameLanes(results ResultStore, hub ResultBroadcaster,
	engine *SettlementEngine, stop <-chan struct{}) {

	for _, token := range models.DurationTokens {
		go SuperviseRoundClock(NewRoundClock(token, results, hub, engine), stop)
	}
}
