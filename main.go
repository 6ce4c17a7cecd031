package main

import (
	"github.com/wfunc/cardauction/config"
	"github.com/wfunc/cardauction/events"
	"github.com/wfunc/cardauction/game"
	"github.com/wfunc/cardauction/logger"
	"github.com/wfunc/cardauction/monitor"
	"github.com/wfunc/cardauction/persistence"
	"github.com/wfunc/cardauction/room"
	"github.com/wfunc/cardauction/server"
	"github.com/wfunc/cardauction/services"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Archive database is optional; without it the server still runs, it
	// just keeps no records.
	var db persistence.Database
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		if cfg.Database.Driver == "pq" {
			db, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		} else {
			db, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		}
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Database connection successful.")
	}

	var publisher room.Observer
	if cfg.Nats.Enabled {
		pub, err := events.NewPublisher(cfg.Nats.URL)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to nats: %v", err)
		}
		defer pub.Close()
		publisher = pub
	}

	mon := monitor.NewMonitor("cardauction")
	mon.StartServer(cfg.Server.MetricsAddress)

	gameServer, err := server.NewGameServer(server.Options{
		HTTPAddress: cfg.Server.HTTPAddress,
		RPCAddress:  cfg.Server.RPCAddress,
		GameOptions: game.Options{
			InitialMoney: cfg.Game.InitialMoney,
			CallDelay:    cfg.Game.CallDelay(),
		},
		IdleRoomTTL: cfg.Game.IdleRoomTTL(),
		Records:     services.NewRecordService(db),
		Monitor:     mon,
		Publisher:   publisher,
	})
	if err != nil {
		logger.Log.Fatalf("Failed to create game server: %v", err)
	}

	logger.Log.Infof("Starting auction game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
