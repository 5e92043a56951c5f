// Cliente de terminal del sistema de historiales.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"journal/pkg/client"
	"journal/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error de configuración: %v\n", err)
		os.Exit(1)
	}
	if err := client.Run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
