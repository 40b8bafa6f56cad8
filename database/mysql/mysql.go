package mysql

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// DSN formats the connection string of c.
func (c Connection) DSN() string {
	return fmt.Sprintf(dsnTemplate,
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}

// NewMySQLDB create the mysql master/replicas cluster. Reads are spread
// over the replicas, writes and queries pinned with dbresolver.Write go to
// the master.
func NewMySQLDB(cfg Config) (*gorm.DB, error) {
	masterDSN := cfg.Master.DSN()
	var replicas []gorm.Dialector
	for _, r := range cfg.Replicas {
		replicas = append(replicas, mysql.Open(r.DSN()))
	}

	db, err := gorm.Open(mysql.Open(masterDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.LogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open master mysql")
	}

	dbResolverCfg := dbresolver.Config{
		Sources:  []gorm.Dialector{mysql.Open(masterDSN)},
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{}}
	if err := db.Use(dbresolver.Register(dbResolverCfg).
		SetConnMaxIdleTime(time.Hour).
		SetConnMaxLifetime(24 * time.Hour).
		SetMaxIdleConns(cfg.ConnCfg.MaxIdleConns).
		SetMaxOpenConns(cfg.ConnCfg.MaxOpenConns),
	); err != nil {
		return nil, errors.Wrap(err, "register mysql resolver")
	}

	return db, nil
}
