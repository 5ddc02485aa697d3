// Package main provides the game server binary: it loads content, assembles
// the engine, and serves WebSocket connections, with optional PostgreSQL
// persistence.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/embervale/mud/internal/config"
	"github.com/embervale/mud/internal/content"
	"github.com/embervale/mud/internal/engine"
	"github.com/embervale/mud/internal/gateway"
	"github.com/embervale/mud/internal/observability"
	"github.com/embervale/mud/internal/persist"
	"github.com/embervale/mud/internal/server"
	"github.com/embervale/mud/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load world content.
	contentStart := time.Now()
	pack, err := content.Load(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("areas", len(pack.World.Areas)),
		zap.Int("rooms", len(pack.World.Rooms)),
		zap.Int("npc_templates", len(pack.World.NpcTemplates)),
		zap.Int("item_templates", len(pack.World.ItemTemplates)),
		zap.Int("effect_templates", len(pack.World.EffectTemplates)),
		zap.Int("triggers", len(pack.Triggers)),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	eng := engine.New(pack.World, cfg, logger)

	for _, b := range pack.Triggers {
		if b.RoomID != "" {
			err = eng.Triggers().AddRoomTrigger(b.RoomID, b.Trigger)
		} else {
			err = eng.Triggers().AddAreaTrigger(b.AreaID, b.Trigger)
		}
		if err != nil {
			logger.Fatal("registering trigger", zap.String("trigger", b.Trigger.ID), zap.Error(err))
		}
	}

	spawns := make([]engine.SpawnConfig, 0, len(pack.Spawns))
	for _, s := range pack.Spawns {
		spawns = append(spawns, engine.SpawnConfig{
			NpcTemplateID: s.NpcTemplateID,
			RoomID:        s.RoomID,
			Count:         s.Count,
			RespawnTime:   s.RespawnTime,
		})
	}
	if err := eng.AddSpawns(spawns...); err != nil {
		logger.Fatal("registering spawns", zap.Error(err))
	}
	if err := eng.PopulateWorld(); err != nil {
		logger.Fatal("populating world", zap.Error(err))
	}
	eng.ScheduleTimerTriggers()
	eng.StartAreaClocks()
	logger.Info("world populated",
		zap.Int("npcs", len(pack.World.Npcs)),
		zap.String("start_room", eng.StartRoom()),
	)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("engine", eng)

	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		if err := pool.EnsureSchema(ctx); err != nil {
			logger.Fatal("applying database schema", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)

		sidecar := persist.New(
			eng,
			postgres.NewPlayerRepository(pool),
			postgres.NewItemRepository(pool),
			cfg.Database.FlushInterval,
			logger,
		)
		eng.SetDirtyHook(func(kind engine.DirtyKind, id string) {
			switch kind {
			case engine.DirtyPlayer:
				sidecar.MarkPlayer(id)
			case engine.DirtyItem:
				sidecar.MarkItem(id)
			}
		})

		// The pool service sits between the engine and the sidecar so the
		// reverse-order shutdown closes it after the sidecar's final flush
		// but before the engine stops.
		quit := make(chan struct{})
		lifecycle.Add("database", &server.FuncService{
			StartFn: func() error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if err := pool.Health(ctx); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					case <-quit:
						return nil
					}
				}
			},
			StopFn: func() {
				close(quit)
				pool.Close()
			},
		})
		lifecycle.Add("persistence", sidecar)
	}

	gw := gateway.New(cfg.Gateway, eng, adminFromEnv(), logger)
	lifecycle.Add("gateway", gw)

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("listen_addr", cfg.Gateway.Addr()),
		zap.Bool("persistence", cfg.Database.Enabled),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// adminFromEnv grants the admin command set to names listed in MUD_ADMINS
// (comma-separated, case-insensitive). A stand-in until an account layer
// supplies roles.
func adminFromEnv() gateway.AdminFunc {
	names := map[string]struct{}{}
	for _, name := range strings.Split(os.Getenv("MUD_ADMINS"), ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name != "" {
			names[name] = struct{}{}
		}
	}
	return func(_, name string) bool {
		_, ok := names[strings.ToLower(name)]
		return ok
	}
}
