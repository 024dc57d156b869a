package main

import (
	"context"

	"github.com/trezcool/darasa/storage/database"
)

var (
	migrateFunc  = database.Migrate          // mockable
	createDBFunc = database.CreateIfNotExist // mockable
)

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return migrateFunc(context.Background(), db, args[0], args[1:]...)
}
