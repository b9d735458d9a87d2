// Command web serves the pension fund comparison API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/zygimantas124/pension-fund-lt/internal/app"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString("pension-web"))
		return
	}

	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
