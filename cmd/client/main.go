package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Wa4h1h/tftp-client/internal/utils"
	"github.com/Wa4h1h/tftp-client/pkg/client"
	logging "github.com/Wa4h1h/tftp-client/pkg/utils"
)

var (
	logLevel = utils.GetEnv[string]("TFTP_LOG_LEVEL", "info", false)
	numTries = utils.GetEnv[uint]("TFTP_NUM_TRIES", "5", false)
	timeout  = utils.GetEnv[time.Duration]("TFTP_TIMEOUT", "5s", false)
	host     = utils.GetEnv[string]("TFTP_HOST", "127.0.0.1", false)
	port     = utils.GetEnv[string]("TFTP_PORT", "69", false)
)

func main() {
	l := logging.NewLogger(logLevel).Sugar()

	defer func() {
		_ = l.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(l, numTries, timeout)
	cli := client.NewCli(l, c, os.Stdin, os.Stdout, host, port)

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, strings.Join(os.Args[1:], " ")); err != nil {
			l.Error(err)
			stop()
			os.Exit(1)
		}

		return
	}

	if err := cli.Read(ctx); err != nil {
		l.Error(err)
	}
}
