package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/eduportal/apps/mockapi/echo"
	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
	logsvc "github.com/trezcool/eduportal/services/logger"
	inmemdb "github.com/trezcool/eduportal/storage/database/inmem"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "MOCKAPI : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	svc := school.NewService(inmemdb.Open())
	admin, err := svc.CreateUser(school.NewUser{
		Login:    conf.MockAPI.AdminLogin,
		Password: conf.MockAPI.AdminPassword,
		Role:     school.RoleAdmin,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding admin: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	logger.Info(fmt.Sprintf("admin account %q (id %d)", admin.Login, admin.ID))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(&echoapi.Options{
		Address:   conf.MockAPI.Addr,
		Debug:     conf.Debug,
		Svc:       svc,
		Validator: school.NewValidator(),
		Logger:    logger,
	})

	// =========================================================================
	// Start API Service

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != nil {
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
