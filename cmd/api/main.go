package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/photon-storage/go-common/log"

	"github.com/photon-storage/sth-explorer/api/server"
	"github.com/photon-storage/sth-explorer/api/service"
	"github.com/photon-storage/sth-explorer/cmd"
	"github.com/photon-storage/sth-explorer/cmd/runtime/version"
	"github.com/photon-storage/sth-explorer/config"
	"github.com/photon-storage/sth-explorer/database/mysql"
	"github.com/photon-storage/sth-explorer/database/orm"
)

func main() {
	app := cli.App{
		Name:    "sth-explorer",
		Usage:   "collects tree head attestations from CT monitors and reports log consistency",
		Action:  exec,
		Version: version.Get(),
		Flags:   append([]cli.Flag{cmd.ConfigPathFlag}, cmd.LogFlags...),
		Before:  cmd.InitLog,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("running api application failed", "error", err)
		os.Exit(1)
	}
}

func exec(ctx *cli.Context) error {
	cfg := &Config{}
	if err := config.Load(ctx.String(cmd.ConfigPathFlag.Name), cfg); err != nil {
		log.Fatal("reading api config failed", "error", err)
	}

	db, err := mysql.NewMySQLDB(cfg.MySQL)
	if err != nil {
		log.Fatal("initialize mysql db error", "error", err)
	}

	if cfg.AutoMigrate {
		if err := orm.Migrate(db); err != nil {
			log.Fatal("migrate mysql schema error", "error", err)
		}
		log.Info("mysql schema migrated")
	}

	log.Info("starting sth explorer api", "port", cfg.Port, "version", version.Get())
	server.New(cfg.Port, service.New(db)).Run()
	return nil
}

// Config defines the config for api service.
type Config struct {
	Port        int          `yaml:"port"`
	MySQL       mysql.Config `yaml:"mysql"`
	AutoMigrate bool         `yaml:"auto_migrate"`
}
