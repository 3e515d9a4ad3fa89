package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"RedCatch/config"
	"RedCatch/internal/auth"
	"RedCatch/internal/game/engine"
	"RedCatch/internal/game/manager"
	"RedCatch/internal/game/scheduler"
	"RedCatch/internal/history"
	"RedCatch/internal/lobby"
	"RedCatch/internal/middleware"
	"RedCatch/internal/storage"
	"RedCatch/internal/utils"
	"RedCatch/internal/websocket"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		utils.Log.Fatal("config load failed", "err", err)
	}
	utils.Init(cfg.Log.Level)

	//-------------------------------------------------------
	// 1. 初始化 Redis / Postgres（都可以不配）
	//-------------------------------------------------------
	if err := storage.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		utils.Log.Fatal("redis init failed", "err", err)
	}
	if err := storage.InitPostgres(cfg.Database.DSN); err != nil {
		utils.Log.Fatal("postgres init failed", "err", err)
	}
	defer storage.Close()

	dir := lobby.NewMemoryDirectory()
	if storage.Rdb != nil {
		dir = lobby.NewRedisDirectory(storage.Rdb)
	}

	rec := history.NewMemoryRecorder()
	if storage.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rec, err = history.NewPostgresRecorder(ctx, storage.DB)
		cancel()
		if err != nil {
			utils.Log.Fatal("history table init failed", "err", err)
		}
	}

	//-------------------------------------------------------
	// 2. 调度池 + Hub + GameManager
	//-------------------------------------------------------
	sched, err := scheduler.NewPoolScheduler(cfg.Game.WorkerPoolSize)
	if err != nil {
		utils.Log.Fatal("worker pool init failed", "err", err)
	}
	defer sched.Release()

	hub := websocket.NewHub()

	g := cfg.Game
	gameMgr := manager.NewGameManager(manager.Deps{
		Hub:       hub,
		Scheduler: sched,
		Lobby:     dir,
		History:   rec,
	}, manager.Options{
		Engine: engine.Options{
			RevealTicks:   g.RevealTicks,
			StartingScore: g.StartingScore,
		},
		DealDelay:                 g.DealDelay,
		RevealInterval:            g.RevealInterval,
		BotDelayMin:               g.BotDelayMin,
		BotDelayMax:               g.BotDelayMax,
		BotPlayProbability:        g.BotPlayProbability,
		BotRevealHeartProbability: g.BotRevealHeartProbability,
		BotRevealBlackProbability: g.BotRevealBlackProbability,
		ListingTTL:                g.ListingTTL,
		IdleRoomTTL:               g.IdleRoomTTL,
	})
	defer gameMgr.Close()

	hub.OnIncoming = gameMgr.HandlePlayerMessage
	hub.OnDisconnect = gameMgr.HandleDisconnect
	go hub.Run()
	defer hub.Close()

	if err := gameMgr.StartSweeper(g.SweepSpec); err != nil {
		utils.Log.Fatal("sweeper init failed", "err", err)
	}

	//-------------------------------------------------------
	// 3. Gin + CORS
	//-------------------------------------------------------
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := []byte(cfg.JWT.Secret)
	authHandler := auth.NewHandler(secret, cfg.JWT.TTL)
	r.POST("/auth/guest", authHandler.Guest)

	//-------------------------------------------------------
	// 4. WebSocket + 房间路由（需要 JWT）
	//-------------------------------------------------------
	authed := r.Group("/", middleware.JwtAuthMiddleware(secret))
	{
		authed.GET("/ws", websocket.ServeWS(hub))
		manager.NewHandler(gameMgr).Routes(authed)
	}

	//-------------------------------------------------------
	// 5. 启动服务器
	//-------------------------------------------------------
	srv := &http.Server{Addr: cfg.Server.Port, Handler: r}
	go func() {
		utils.Log.Info("server running", "addr", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Log.Fatal("server stopped", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Log.Error("server shutdown", "err", err)
	}
}
