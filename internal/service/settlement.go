package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
	"ColorWinApi/pkg/redis"
)

const (
	// Winning bets pay amount * 1.9, a 10% house edge on even-odds bets.
	WinMultiplier = 1.9

	// All games settle in rupees.
	SettlementCurrency = "INR"

	settleQueueSize = 16

	latestResultCacheKeyPrefix = "colorwin:latest:"
)

var errMissingConflictedResult = errors.New("result insert conflicted but row is missing")

type settleJob struct {
	Duration     string
	PeriodNumber int64
}

// SettlementEngine turns settlement requests into finalized, broadcast
// results, exactly once per period. The clock is allowed to over-signal;
// dedup happens here, first on an in-process period map and ultimately on
// the results table's unique index.
type SettlementEngine struct {
	bets    BetLedger
	wallet  WalletLedger
	results ResultStore
	hub     ResultBroadcaster
	cache   *redis.RedisService

	queues map[string]chan settleJob

	inflightMu sync.Mutex
	inflight   map[settleJob]struct{}
}

// NewSettlementEngine wires the engine to its collaborators. cache may be
// nil; the latest-result cache is an optimization, not a correctness
// dependency.
func NewSettlementEngine(bets BetLedger, wallet WalletLedger, results ResultStore,
	hub ResultBroadcaster, cache *redis.RedisService) *SettlementEngine {

	queues := make(map[string]chan settleJob, len(models.DurationTokens))
	for _, token := range models.DurationTokens {
		queues[token] = make(chan settleJob, settleQueueSize)
	}

	return &SettlementEngine{
		bets:     bets,
		wallet:   wallet,
		results:  results,
		hub:      hub,
		cache:    cache,
		queues:   queues,
		inflight: make(map[settleJob]struct{}),
	}
}

// Start launches one settlement worker per duration lane. Workers survive
// panics in individual jobs.
func (e *SettlementEngine) Start() {
	for token, queue := range e.queues {
		go e.runWorker(token, queue)
	}
}

// Enqueue submits a settlement request without blocking the caller. A full
// queue drops the request; the clock re-signals the same period on its next
// eligible tick, so nothing is lost.
func (e *SettlementEngine) Enqueue(duration string, periodNumber int64) {
	queue, ok := e.queues[duration]
	if !ok {
		logger.Warn("Settlement request for unknown duration %q dropped", duration)
		return
	}

	select {
	case queue <- settleJob{Duration: duration, PeriodNumber: periodNumber}:
	default:
		logger.Warn("Settlement queue for %s is full, dropping period %d", duration, periodNumber)
	}
}

func (e *SettlementEngine) runWorker(token string, queue chan settleJob) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for job := range queue {
		e.runJob(job, rng)
	}
}

func (e *SettlementEngine) runJob(job settleJob, rng *rand.Rand) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Settlement of %s period %d panicked: %v", job.Duration, job.PeriodNumber, r)
		}
	}()

	if err := e.Settle(job.Duration, job.PeriodNumber, rng); err != nil {
		// Transient failure: the lane keeps ticking and the clock will ask
		// again for the same period because it is still unsettled.
		logger.Error("Failed to settle %s period %d: %v", job.Duration, job.PeriodNumber, err)
	}
}

// Settle runs the full settlement sequence for one period:
//
//  1. skip if the period is fully settled (result exists, no pending bets);
//  2. pick the outcome from the color stakes;
//  3. insert the result, riding on the unique index for exactly-once;
//  4. price every pending bet, credit winners at WinMultiplier;
//  5. broadcast the final result.
//
// A period with a result but leftover pending bets is resumed against the
// stored outcome, so a crash mid-settlement is repaired on the next signal.
func (e *SettlementEngine) Settle(duration string, periodNumber int64, rng *rand.Rand) error {
	job := settleJob{Duration: duration, PeriodNumber: periodNumber}
	if !e.acquire(job) {
		// Another run for the same period is in flight in this process.
		return nil
	}
	defer e.release(job)

	result, err := e.results.Find(duration, periodNumber)
	if err != nil {
		return logger.WrapError(err, "")
	}

	inserted := false
	if result != nil {
		pending, err := e.bets.HasPendingBets(duration, periodNumber)
		if err != nil {
			return logger.WrapError(err, "")
		}
		if !pending {
			// Fully settled already; idempotent no-op.
			return nil
		}
		logger.Warn("Resuming partially settled %s period %d", duration, periodNumber)
	} else {
		stakes, err := e.bets.ColorStakes(duration, periodNumber)
		if err != nil {
			return logger.WrapError(err, "")
		}

		outcome := PickOutcome(stakes.Red, stakes.Green, stakes.Violet, rng)
		result = &models.GameResult{
			Duration:      duration,
			PeriodNumber:  periodNumber,
			WinningNumber: outcome.Number,
			WinningColor:  outcome.Color,
			WinningSize:   outcome.Size,
			CreatedAt:     time.Now(),
		}

		inserted, err = e.results.InsertIfAbsent(result)
		if err != nil {
			return logger.WrapError(err, "")
		}
		if !inserted {
			// A concurrent settlement won the insert; pay against its
			// outcome, not ours.
			result, err = e.results.Find(duration, periodNumber)
			if err != nil {
				return logger.WrapError(err, "")
			}
			if result == nil {
				return logger.WrapError(errMissingConflictedResult, "")
			}
		}

		logger.Info("Settled %s period %d: number=%d color=%s size=%s (stakes r=%.2f g=%.2f v=%.2f)",
			duration, periodNumber, result.WinningNumber, result.WinningColor, result.WinningSize,
			stakes.Red, stakes.Green, stakes.Violet)
	}

	if err := e.payOutPeriod(duration, periodNumber, result); err != nil {
		return logger.WrapError(err, "")
	}

	// Only the run that inserted the result announces it. Resumed and
	// lost-race runs repair payouts against an already-published result;
	// re-broadcasting it would duplicate the per-period result event.
	if inserted {
		e.hub.BroadcastResult(result)
		e.cacheLatestResult(result)
	}

	return nil
}

// payOutPeriod prices every still-pending bet of the period against the
// stored result. Each bet is first claimed with a pending->processed
// compare-and-swap; only the claimer credits the wallet, so no bet can pay
// twice no matter how many settlement runs overlap.
func (e *SettlementEngine) payOutPeriod(duration string, periodNumber int64, result *models.GameResult) error {
	pending, err := e.bets.PendingBets(duration, periodNumber)
	if err != nil {
		return logger.WrapError(err, "")
	}

	for _, bet := range pending {
		var payout float64
		if betWins(bet, result) {
			payout = bet.Amount * WinMultiplier
		}

		claimed, err := e.bets.MarkProcessed(bet.ID)
		if err != nil {
			logger.Error("Failed to mark bet %d processed: %v", bet.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		if payout > 0 {
			if err := e.wallet.Credit(bet.UserID, SettlementCurrency, payout); err != nil {
				// The bet is already claimed, so a retry will not credit it
				// again; surface loudly for manual repair.
				logger.Error("Failed to credit %.2f to user %d for bet %d: %v",
					payout, bet.UserID, bet.ID, err)
			}
		}
	}

	return nil
}

func (e *SettlementEngine) acquire(job settleJob) bool {
	e.inflightMu.Lock()
	defer e.inflightMu.Unlock()

	if _, busy := e.inflight[job]; busy {
		return false
	}
	e.inflight[job] = struct{}{}
	return true
}

func (e *SettlementEngine) release(job settleJob) {
	e.inflightMu.Lock()
	delete(e.inflight, job)
	e.inflightMu.Unlock()
}

func (e *SettlementEngine) cacheLatestResult(result *models.GameResult) {
	if e.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := latestResultCacheKeyPrefix + result.Duration
	window := models.GameDurations[result.Duration]
	if err := e.cache.SetJSON(ctx, key, result, window); err != nil {
		logger.Error("Failed to cache latest result for %s: %v", result.Duration, err)
	}
}
