package libs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// GracefulShutdown inicia o servidor HTTP e bloqueia até receber SIGINT/SIGTERM
// ou até ctx terminar; então desliga o servidor dentro do timeout.
func GracefulShutdown(ctx context.Context, server *http.Server, timeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("🚀 Servidor HTTP escutando", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			slog.Error("Falha ao iniciar o servidor", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("🔌 Desligando o servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Erro no desligamento do servidor", "error", err)
		return err
	}

	slog.Info("✅ Servidor desligado com sucesso.")
	return nil
}
