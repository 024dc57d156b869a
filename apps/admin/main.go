package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
	"github.com/trezcool/darasa/storage/cache/boltcache"
	"github.com/trezcool/darasa/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	cli := commandLine{
		conf: conf,
		out:  os.Stdout,
		openDB: func() (*sqlx.DB, error) {
			return database.Open(conf)
		},
		openStore: func() (cache.Store, error) {
			return boltcache.Open(conf.Cache.Path)
		},
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
