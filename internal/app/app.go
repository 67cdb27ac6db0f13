package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"ColorWinApi/cmd/db"
	"ColorWinApi/internal/middleware"
	"ColorWinApi/internal/service"
	"ColorWinApi/pkg/logger"
	"ColorWinApi/pkg/redis"
)

const apiPrefix = "api/"

func Start() {
	db.Connect()

	gin.DisableConsoleColor()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.BlockBadActorsMiddleware())
	authorized := router.Group("/", middleware.AuthMiddleware())

	redisAddr, ok := os.LookupEnv("REDIS_ADDR")
	if !ok {
		redisAddr = "redis:6379"
	}
	redisService := redis.NewRedisService(redisAddr, "")

	// The broadcaster and the store-backed ledgers are constructed once
	// here and handed to everything that needs them.
	hub := service.NewGameWebsocketService()
	betLedger := service.NewGormBetLedger()
	walletLedger := service.NewGormWalletLedger()
	resultStore := service.NewGormResultStore()

	engine := service.NewSettlementEngine(betLedger, walletLedger, resultStore, hub, redisService)
	engine.Start()

	// One clock per configured duration, all running in parallel.
	stopLanes := make(chan struct{})
	service.StartGameLanes(resultStore, hub, engine, stopLanes)

	colorWinAPI := service.NewColorWinAPI(resultStore, redisService)

	// router
	{
		router.POST(apiPrefix+"users/auth/signup", service.SignUp)
		router.POST(apiPrefix+"users/auth/login", service.AuthLogin)
	}

	// authorized
	{
		// game WebSocket
		authorized.GET(apiPrefix+"ws/colorwin/live", hub.LiveGameWebsocketHandler)

		// users
		authorized.GET(apiPrefix+"users", service.GetUser)
		authorized.GET(apiPrefix+"users/wallet", service.GetUserWallet)

		// color prediction game
		authorized.POST(apiPrefix+"games/colorwin/place", colorWinAPI.PlaceColorWinBet)
		authorized.GET(apiPrefix+"games/colorwin/latest", colorWinAPI.GetColorWinLatestResult)
		authorized.GET(apiPrefix+"games/colorwin/results", colorWinAPI.GetColorWinResults)
		authorized.GET(apiPrefix+"games/colorwin/remaining", colorWinAPI.GetColorWinRemaining)
		authorized.GET(apiPrefix+"games/colorwin/mybets", colorWinAPI.GetUserColorWinBets)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: router.Handler(),
	}

	go func() {
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server...")

	close(stopLanes)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server Shutdown: %v", err)
	}

	logger.Info("Server exiting")
}
