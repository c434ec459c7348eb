package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"

	"github.com/trezcool/eduportal/core"
)

func main() {
	os.Exit(start(os.Args))
}

func start(args []string) (code int) {
	must(newContainer().Invoke(func(cli *commandLine, closeStore storeCloser, logger core.Logger) {
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("closing session store", err)
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := cli.run(ctx, args); err != nil {
			if err != errHelp {
				fmt.Fprintf(cli.errOut, "error: %s\n", errors.Cause(err))
			}
			code = 1
		}
	}))
	return code
}
