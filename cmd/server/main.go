package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StoreStation/blockcore/pkg/block"
	"github.com/StoreStation/blockcore/pkg/registry"
	"github.com/StoreStation/blockcore/pkg/server"
	"github.com/StoreStation/blockcore/pkg/world"
	"github.com/StoreStation/blockcore/pkg/worldgen"
)

// tickInterval is the 20-tick-per-second world clock.
const tickInterval = 50 * time.Millisecond

// flushInterval is how often the background worker persists dirty chunks
// between a player's writes and an unclean shutdown.
const flushInterval = 30 * time.Second

func main() {
	address := flag.String("address", ":25565", "Server address to listen on")
	maxPlayers := flag.Int("max-players", 20, "Maximum number of players")
	motd := flag.String("motd", "A blockcore Server", "Server MOTD")
	seed := flag.Int64("seed", 0, "World seed (0 = random)")
	worldDir := flag.String("world-dir", "world", "Directory region files are read from and written to")
	defaultGameMode := flag.String("default-gamemode", "survival", "Default game mode (survival, creative, adventure, spectator)")
	flag.Parse()

	gameMode, ok := server.ParseGameMode(*defaultGameMode)
	if !ok {
		log.Fatalf("Invalid default game mode: %s", *defaultGameMode)
	}

	if err := os.MkdirAll(*worldDir, 0o755); err != nil {
		log.Fatalf("Failed to create world directory: %v", err)
	}

	reg := registry.Builtin()
	behaviors := block.NewTable()
	block.RegisterBuiltins(behaviors, reg)
	gen, err := worldgen.NewPipeline(*seed, reg)
	if err != nil {
		log.Fatalf("Failed to build world generator: %v", err)
	}
	w := world.New(*seed, reg, behaviors, gen, *worldDir)

	tickCtx, stopTicking := context.WithCancel(context.Background())
	go runTickLoop(tickCtx, w)

	config := server.Config{
		Address:         *address,
		MaxPlayers:      *maxPlayers,
		MOTD:            *motd,
		Seed:            *seed,
		DefaultGameMode: gameMode,
		World:           w,
		Reg:             reg,
	}

	srv := server.New(config)
	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("blockcore server started (Minecraft 1.8.9, Protocol 47)")
	log.Printf("Address: %s | Max Players: %d | World: %s", config.Address, config.MaxPlayers, *worldDir)

	// Wait for interrupt signal or internal shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Shutting down server (received signal: %v)...", sig)
	case <-srv.StopChan():
		log.Println("Shutting down server (internal)...")
	}

	srv.Stop()
	stopTicking()

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.Close(closeCtx); err != nil {
		log.Printf("Error flushing world on shutdown: %v", err)
	}

	log.Println("Server stopped.")
}

// runTickLoop advances the world clock at tickInterval and, on a slower
// cadence, flushes dirty chunks in the background so a crash loses at
// most one flush interval of writes.
func runTickLoop(ctx context.Context, w *world.World) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	flushTicker := time.NewTicker(flushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Tick()
		case <-flushTicker.C:
			flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := w.FlushDirty(flushCtx, 4); err != nil {
				log.Printf("Background chunk flush failed: %v", err)
			}
			cancel()
		}
	}
}
