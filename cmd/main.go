package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/cmd/recompute"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/database"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/repository"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "MyInvestingRecords CMD"
	app.Usage = "The MyInvestingRecords command line interface"

	app.Commands = []cli.Command{
		recomputeCMD,
		migrateCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	recomputeCMD = cli.Command{
		Name:        "recompute",
		Usage:       "re-derive realized P&L projections from the cash-flow ledger",
		Action:      recomputeAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Re-derive position P&L fields from the ledger and report drift`,
	}
	migrateCMD = cli.Command{
		Name:        "migrate",
		Usage:       "run database migrations and exit",
		Action:      migrateAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Connect to the database and run schema migrations`,
	}
)

func recomputeAction(_ *cli.Context) error {

	logrus.Info("Starting recompute CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	rc := &recompute.Recompute{
		Positions: repository.NewPositionRepository(),
		Ledger:    repository.NewCashFlowRepository(),
		Cfg:       recompute.GetConfig(),
	}

	if err := rc.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func migrateAction(_ *cli.Context) error {

	logrus.Info("Starting migrate CMD")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	logrus.Info("Migrations completed")
	return nil
}
