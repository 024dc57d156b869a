package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	out       io.Writer
	openDB    func() (*sqlx.DB, error)
	openStore func() (cache.Store, error)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  createdb - create the app database user and database if they do not exist")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  token -user ID [-name NAME] [-email EMAIL] [-role student|teacher] - mint a development JWT")
	fmt.Fprintln(cli.out, "  snapshot [-key KEY] - print a cache snapshot, or list the cached keys")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenUser := tokenCmd.String("user", "", "The user id (token subject).")
	tokenName := tokenCmd.String("name", "", "The user's full name.")
	tokenEmail := tokenCmd.String("email", "", "The user's email address.")
	tokenRole := tokenCmd.String("role", "student", "The user's role: student or teacher.")

	snapshotCmd := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	snapshotCmd.SetOutput(cli.out)
	snapshotKey := snapshotCmd.String("key", "", "The cache key to print. Lists the keys when empty.")

	switch args[1] {
	case "createdb":
		return createDBFunc(cli.conf)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenUser == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenUser, *tokenName, *tokenEmail, *tokenRole)
	case "snapshot":
		if err := snapshotCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.snapshot(*snapshotKey)
	default:
		cli.printUsage()
		return errHelp
	}
}
