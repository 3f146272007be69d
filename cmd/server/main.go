package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"antimatter/internal/api"
	"antimatter/internal/config"
	"antimatter/internal/game"
	"antimatter/internal/host"
	"antimatter/internal/level"
	"antimatter/internal/physics"
	"antimatter/internal/render"
	"antimatter/internal/settings"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  ANTIMATTER - GO RUNTIME")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	videoCfg := appConfig.Video
	simCfg := appConfig.Simulation
	serverCfg := appConfig.Server

	log.Printf("🎮 Config: %d FPS, %dx%d, step %.4fs, %d/%d iterations",
		videoCfg.FPS, videoCfg.Width, videoCfg.Height, simCfg.FixedStep,
		simCfg.VelocityIterations, simCfg.PositionIterations)

	// Settings persisted across restarts; memory only when the store is unavailable
	var store *settings.Manager
	if gdataManager, err := settings.Open("antimatter"); err != nil {
		log.Printf("⚠️ Settings store unavailable: %v (settings will not persist)", err)
		store = settings.NewManager(nil, appConfig.Settings)
	} else {
		store = settings.NewManager(gdataManager, appConfig.Settings)
	}

	// Event log
	events := game.NewEventLog()
	if err := events.Start(appConfig.EventLog.Path); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if appConfig.EventLog.Path != "" {
		log.Printf("📝 Event log: %s", appConfig.EventLog.Path)
	}

	// Debug server
	var debugServer *http.Server
	if serverCfg.DebugPort > 0 && os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = fmt.Sprintf("127.0.0.1:%d", serverCfg.DebugPort)
		debugServer = api.StartDebugServer(debugCfg)
	}

	// Surfaces, world, frame host and loop
	surface := render.NewCanvas(videoCfg.Width, videoCfg.Height)
	debugSurface := render.NewCanvas(videoCfg.Width, videoCfg.Height)
	world := physics.NewWorld()

	var loop *game.Loop
	frames := host.NewFrameHost(videoCfg.FPS, func() {
		// Commands and timers still apply while paused
		loop.Drain()
	})
	timers := host.NewScheduler(host.PostFunc(func(fn func()) { loop.Post(fn) }))

	loop = game.NewLoop(game.LoopConfig{
		Video:        videoCfg,
		Simulation:   simCfg,
		Settings:     store.Get(),
		World:        world,
		Surface:      surface,
		DebugSurface: debugSurface,
		Frames:       frames,
		Timers:       timers,
		Events:       events,
	})
	frames.Start()

	// Level
	loader := level.NewLoader(loop, world)
	desc := level.Demo()
	if path := appConfig.Level.Path; path != "" {
		d, err := level.LoadFile(path)
		if err != nil {
			log.Printf("⚠️ %v, loading the demo level instead", err)
		} else {
			desc = d
		}
	}
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 5*time.Second)
	if err := loader.Load(loadCtx, desc, true); err != nil {
		log.Fatalf("❌ Failed to load level %q: %v", desc.Name, err)
	}
	cancelLoad()

	if os.Getenv("START_PAUSED") != "true" {
		loop.Play()
	}

	// API server
	server := api.NewServer(api.RouterConfig{
		Loop:     loop,
		Levels:   loader,
		Settings: store,
		Frame:    surface,
		Debug:    debugSurface,
		Host:     frames,
	})

	go func() {
		addr := fmt.Sprintf(":%d", serverCfg.Port)
		log.Printf("🌐 API server on http://localhost%s", addr)
		log.Printf("🖼️ Frame: http://localhost%s/api/frame.png", addr)

		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ API server shutdown: %v", err)
	}
	if debugServer != nil {
		debugServer.Shutdown(ctx)
	}
	loop.Pause()
	frames.Stop()
	events.Stop()
	if err := store.Save(); err != nil {
		log.Printf("⚠️ Failed to save settings: %v", err)
	}
	log.Println("👋 Goodbye!")
}
