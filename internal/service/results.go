package service

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
)

// GetColorWinLatestResult returns the most recent settled result for a
// lane, or the result of one specific period when "period" is given. The
// latest result is served from redis when cached.
func (a *ColorWinAPI) GetColorWinLatestResult(c *gin.Context) {
	duration := c.Query("duration")
	if !models.IsValidDurationToken(duration) {
		c.JSON(400, gin.H{"error": "invalid duration"})
		return
	}

	if raw := c.Query("period"); raw != "" {
		periodNumber, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || periodNumber < 1 {
			c.JSON(400, gin.H{"error": "invalid period"})
			return
		}

		result, err := a.results.Find(duration, periodNumber)
		if err != nil {
			logger.Error("%v", err)
			c.Status(500)
			return
		}
		if result == nil {
			c.JSON(404, gin.H{"error": "No result for this period"})
			return
		}

		c.JSON(200, result)
		return
	}

	if a.cache != nil {
		var cached models.GameResult
		key := latestResultCacheKeyPrefix + duration
		if err := a.cache.GetJSON(c.Request.Context(), key, &cached); err == nil {
			c.JSON(200, &cached)
			return
		}
	}

	result, err := models.GetLatestGameResult(nil, duration)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}
	if result == nil {
		c.JSON(404, gin.H{"error": "No settled periods yet"})
		return
	}

	c.JSON(200, result)
}

// GetColorWinResults returns a lane's settled results newest-first.
func (a *ColorWinAPI) GetColorWinResults(c *gin.Context) {
	duration := c.Query("duration")
	if !models.IsValidDurationToken(duration) {
		c.JSON(400, gin.H{"error": "invalid duration"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(400, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	results, err := models.GetGameResultHistory(nil, duration, limit)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{"results": results})
}

// GetColorWinRemaining reports how much of the active window is left.
// Computed from wall-clock time on every request, never stored.
func (a *ColorWinAPI) GetColorWinRemaining(c *gin.Context) {
	duration := c.Query("duration")
	if !models.IsValidDurationToken(duration) {
		c.JSON(400, gin.H{"error": "invalid duration"})
		return
	}

	windowMs := models.GameDurations[duration].Milliseconds()
	remaining := RemainingInWindow(time.Now().UnixMilli(), windowMs)

	lastSettled, err := a.results.LastSettledPeriod(duration)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	c.JSON(200, gin.H{
		"duration":      duration,
		"remainingMs":   remaining,
		"period_number": lastSettled + 1,
	})
}
