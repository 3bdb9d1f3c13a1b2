package shutdownsetup

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// ShutdownTimeout is how long in-flight requests get to finish.
const ShutdownTimeout = 30 * time.Second

// SetupGracefulShutdown blocks until SIGINT or SIGTERM, then drains the
// HTTP server.
func SetupGracefulShutdown(server *http.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return
	}

	log.Info("Server exited properly")
}
