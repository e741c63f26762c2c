package main

import (
	"fmt"
	"os"

	"github.com/TomHarkness/TransparentBalanceApp/internal/server/app"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	application, err := app.New(version, buildDate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init server: %v\n", err)
		os.Exit(1)
	}
	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server stopped with error: %v\n", err)
		os.Exit(1)
	}
}
