// bluepad drives a Bluetooth serial (SPP) device like a gamepad.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bluepad/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bluepad: %v\n", err)
		os.Exit(1)
	}
}
