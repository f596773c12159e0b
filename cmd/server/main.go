// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/pauloqueiros/codinomes/internal/game"
	"github.com/pauloqueiros/codinomes/internal/handlers"
	"github.com/pauloqueiros/codinomes/internal/middleware"
)

func main() {
	logger := logrus.New()
	if os.Getenv("DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	srv := handlers.NewServer(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweepInterval := game.DefaultSweepInterval
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Fatalf("invalid SWEEP_INTERVAL %q: %v", v, err)
		}
		sweepInterval = d
	}
	go srv.Manager.Registry().RunSweeper(ctx, sweepInterval)

	r := mux.NewRouter()
	r.HandleFunc("/", handlers.PingHandler).Methods("GET")
	r.Handle("/ws", handlers.WSHandler(logger, srv))
	r.Handle("/rooms/{roomID}/qr.png", middleware.LogMiddleware(logger)(
		handlers.RoomQRHandler(srv),
	)).Methods("GET")

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", addr)
		errc <- server.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("server exited: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		server.Shutdown(shutdownCtx)
		shutdownCancel()
	}
}
