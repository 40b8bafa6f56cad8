package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/photon-storage/go-common/log"

	"github.com/photon-storage/sth-explorer/cmd"
	"github.com/photon-storage/sth-explorer/cmd/runtime/version"
	"github.com/photon-storage/sth-explorer/config"
	"github.com/photon-storage/sth-explorer/database/mysql"
	"github.com/photon-storage/sth-explorer/database/orm"
)

func main() {
	app := cli.App{
		Name:    "sth-explorer-migrate",
		Usage:   "creates or updates the sth explorer mysql schema",
		Action:  exec,
		Version: version.Get(),
		Flags:   append([]cli.Flag{cmd.ConfigPathFlag}, cmd.LogFlags...),
		Before:  cmd.InitLog,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("running migration failed", "error", err)
		os.Exit(1)
	}
}

func exec(ctx *cli.Context) error {
	cfg := &Config{}
	if err := config.Load(ctx.String(cmd.ConfigPathFlag.Name), cfg); err != nil {
		log.Fatal("fail on read config", "error", err)
	}

	db, err := mysql.NewMySQLDB(cfg.MySQL)
	if err != nil {
		log.Fatal("initialize mysql db error", "error", err)
	}

	if err := orm.Migrate(db); err != nil {
		return err
	}

	log.Info("mysql schema migrated", "db", cfg.MySQL.Master.DBName)
	return nil
}

// Config defines the config for the migration tool. Only the mysql
// section of the api config is read.
type Config struct {
	MySQL mysql.Config `yaml:"mysql"`
}
