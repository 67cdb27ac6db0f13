package service

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ColorWinApi/internal/middleware"
	"ColorWinApi/internal/models"
	"ColorWinApi/pkg/logger"
)

// upgrader is used to upgrade HTTP connections to WebSocket connections.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// GameWebsocketService fans timer ticks and settled results out to
// connected players. Connections subscribe to one or more duration lanes.
// Constructed once at startup and handed to the clocks and the settlement
// engine.
type GameWebsocketService struct {
	mu               sync.Mutex
	connections      map[int64]*websocket.Conn
	subscriptions    map[int64]map[string]bool
	lastActivityTime map[int64]time.Time
}

func NewGameWebsocketService() *GameWebsocketService {
	service := &GameWebsocketService{
		connections:      make(map[int64]*websocket.Conn),
		subscriptions:    make(map[int64]map[string]bool),
		lastActivityTime: make(map[int64]time.Time),
	}
	go service.cleanupInactiveConnections()
	return service
}

func (ws *GameWebsocketService) cleanupInactiveConnections() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ws.mu.Lock()
		now := time.Now()
		for userID, lastActivity := range ws.lastActivityTime {
			if now.Sub(lastActivity) > 30*time.Minute {
				if conn, ok := ws.connections[userID]; ok {
					conn.Close()
				}
				ws.dropLocked(userID)
			}
		}
		ws.mu.Unlock()
	}
}

// LiveGameWebsocketHandler subscribes the caller to the lanes named in the
// "durations" query parameter (comma separated; all lanes when omitted).
func (ws *GameWebsocketService) LiveGameWebsocketHandler(c *gin.Context) {
	userID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("Error retrieving user ID: %v", err)
		c.Status(500)
		return
	}

	tokens := models.DurationTokens
	if raw := c.Query("durations"); raw != "" {
		tokens = strings.Split(raw, ",")
		for _, token := range tokens {
			if !models.IsValidDurationToken(token) {
				c.JSON(400, gin.H{"error": "invalid duration"})
				return
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed: %v", err)
		return
	}

	subscribed := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		subscribed[token] = true
	}

	ws.mu.Lock()
	if old, ok := ws.connections[userID]; ok {
		old.Close()
	}
	ws.connections[userID] = conn
	ws.subscriptions[userID] = subscribed
	ws.lastActivityTime[userID] = time.Now()
	ws.mu.Unlock()

	logger.Info("User %d connected to game WebSocket (%s)", userID, strings.Join(tokens, ","))

	defer func() {
		ws.mu.Lock()
		ws.dropLocked(userID)
		ws.mu.Unlock()
		conn.Close()
		logger.Info("User %d disconnected from game WebSocket", userID)
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
		ws.mu.Lock()
		ws.lastActivityTime[userID] = time.Now()
		ws.mu.Unlock()
	}
}

// BroadcastTimerUpdate pushes the lane countdown to its subscribers,
// roughly once per second. Advisory only; clients must not treat it as
// authoritative state.
func (ws *GameWebsocketService) BroadcastTimerUpdate(duration string, remainingMs int64) {
	ws.broadcast(duration, gin.H{
		"event":       "timerUpdate:" + duration,
		"duration":    duration,
		"remainingMs": remainingMs,
	})
}

// BroadcastResult pushes a settled period to the lane's subscribers.
func (ws *GameWebsocketService) BroadcastResult(result *models.GameResult) {
	ws.broadcast(result.Duration, gin.H{
		"event":         "resultUpdate:" + result.Duration,
		"success":       true,
		"period_number": result.PeriodNumber,
		"duration":      result.Duration,
		"result": gin.H{
			"winning_color":  result.WinningColor,
			"winning_number": result.WinningNumber,
			"winning_size":   result.WinningSize,
		},
	})
}

func (ws *GameWebsocketService) broadcast(duration string, payload gin.H) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for userID, conn := range ws.connections {
		if subs, ok := ws.subscriptions[userID]; !ok || !subs[duration] {
			continue
		}

		if err := conn.WriteJSON(payload); err != nil {
			logger.Error("Failed to send game event to user %d: %v", userID, err)
			conn.Close()
			ws.dropLocked(userID)
		}
	}
}

// dropLocked removes a connection's bookkeeping. Callers hold ws.mu.
func (ws *GameWebsocketService) dropLocked(userID int64) {
	delete(ws.connections, userID)
	delete(ws.subscriptions, userID)
	delete(ws.lastActivityTime, userID)
}
