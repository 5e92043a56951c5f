// Servidor de desarrollo del sistema de historiales.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"journal/pkg/config"
	"journal/pkg/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error de configuración: %v\n", err)
		os.Exit(1)
	}
	if err := server.Run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error del servidor: %v\n", err)
		os.Exit(1)
	}
}
