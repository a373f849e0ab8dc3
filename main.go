package main

import (
	"github.com/joho/godotenv"

	"github.com/wfunc/casino/config"
	"github.com/wfunc/casino/logger"
	"github.com/wfunc/casino/persistence"
	"github.com/wfunc/casino/server"
)

func main() {
	// .env 不存在时静默跳过, 生产环境用真实环境变量
	_ = godotenv.Load()

	logger.Init()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	var db persistence.Database
	pg := cfg.Database.Postgres
	if cfg.Database.UseORM {
		db, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	} else {
		db, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Log.Info("Database connection successful.")

	gameServer := server.NewGameServer(cfg, db)

	logger.Log.Infof("Starting casino server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
