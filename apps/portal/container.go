package main

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/eduportal/apps/portal/views"
	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
	"github.com/trezcool/eduportal/services/api"
	logsvc "github.com/trezcool/eduportal/services/logger"
	"github.com/trezcool/eduportal/storage/sessionstore"
)

// storeCloser releases the session store's resources.
type storeCloser func() error

func newLogger(conf *core.Config) core.Logger {
	var out io.Writer = io.Discard
	if conf.Debug {
		out = os.Stderr
	}
	return logsvc.NewRollbarLogger(log.New(out, "PORTAL : ", log.LstdFlags|log.Lmicroseconds), conf)
}

func newSessionStore(conf *core.Config, logger core.Logger) (session.Store, storeCloser, error) {
	store, closer, err := sessionstore.New(context.Background(), conf)
	if err != nil {
		logger.Error("opening session store", err)
		return nil, nil, err
	}
	return store, closer, nil
}

func newViewDeps(conf *core.Config, client *api.Client, gate *session.Gate, logger core.Logger) views.Deps {
	return views.Deps{
		Client:      client,
		Gate:        gate,
		Logger:      logger,
		Out:         os.Stdout,
		AbsentToken: conf.Journal.AbsentToken,
	}
}

// newContainer returns the portal's dependency injection dig.Container
func newContainer() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(school.NewValidator))
	must(c.Provide(api.NewClientFromConfig))
	must(c.Provide(newSessionStore))
	must(c.Provide(session.NewGate))
	must(c.Provide(newViewDeps))
	must(c.Provide(newCommandLine))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
