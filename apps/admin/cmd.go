package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf       *core.Config
	db         *sqlx.DB
	studentSvc student.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run a database migration command (up, down, status, ...)")
	fmt.Println("  sweep - promote all students whose transition window starts today")
	fmt.Println("  token -user ID [-name NAME] [-email EMAIL] [-admin] - mint an API access token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	tokenUser := tokenCmd.Int("user", 0, "The user ID the token is minted for.")
	tokenName := tokenCmd.String("name", "", "The user's display name.")
	tokenEmail := tokenCmd.String("email", "", "The user's email.")
	tokenAdmin := tokenCmd.Bool("admin", false, "Grant admin access.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "sweep":
		return cli.sweep()
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenUser == 0 {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenUser, *tokenName, *tokenEmail, *tokenAdmin)
	default:
		cli.printUsage()
		return errHelp
	}
}
