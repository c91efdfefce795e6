package main

import (
	"log"
	"os"

	"github.com/edupredict/predictcli/core"
	"github.com/edupredict/predictcli/core/session"
	"github.com/edupredict/predictcli/services/authapi"
	logsvc "github.com/edupredict/predictcli/services/logger"
	"github.com/edupredict/predictcli/services/predictapi"
	sqlitestore "github.com/edupredict/predictcli/storage/sqlite"
)

func main() {
	std := log.New(os.Stderr, "", log.LstdFlags)
	var logger core.Logger
	if core.Conf.GetBool("debug") {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std)
	}

	store, err := sqlitestore.Open(core.Conf.GetString("profilePath"))
	if err != nil {
		logger.Fatal("opening profile store", err)
	}
	defer store.Close()

	base := core.Conf.GetString("apiBaseURL")
	cli := &commandLine{
		sess:    session.NewManager(authapi.NewClient(base, logger), store, logger),
		predict: predictapi.NewClient(base, logger),
		out:     os.Stdout,
	}

	if err := cli.run(os.Args); err != nil && err != errHelp {
		logger.Fatal(err.Error())
	}
}
