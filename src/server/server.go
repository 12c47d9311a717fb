package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/connectors"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/controller"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/handler"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/notifier"
	"github.com/LuisOrlando98/MyInvestingRecords-sub000/src/repository"
)

// StartServer wires the production dependency graph and serves until
// SIGINT/SIGTERM.
func StartServer(port string) {
	config := GetConfig()
	if port == "" {
		port = config.Port
	}

	hub := notifier.NewHub()
	changeNotifier := notifier.Multi{notifier.NewLogNotifier(), hub}

	quoteClient := connectors.NewTradierQuoteClient(connectors.GetConfig())

	positionController := controller.NewPositionController(
		repository.NewPositionRepository(),
		repository.NewCashFlowRepository(),
		changeNotifier,
		quoteClient,
		controller.GetConfig(),
	)

	// Router with middleware
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("\"/healthcheck\" error")
		}
	})
	r.Get("/ws", hub.ServeWS)

	handler.MountPositionRoutes(r, positionController)
	handler.MountWatchlistRoutes(r, repository.NewWatchlistRepository())

	// Graceful server
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
