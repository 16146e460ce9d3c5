package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oakwood-commons/fxpick/cmd"
	"github.com/oakwood-commons/fxpick/pkg/logger"
	"github.com/oakwood-commons/fxpick/pkg/settings"
)

func main() {
	err := cmd.Execute()
	logger.Sync()
	if err == nil {
		return
	}
	// Interrupted runs exit like a shell-killed process.
	if errors.Is(err, context.Canceled) {
		os.Exit(130)
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", settings.CliBinaryName, err)
	os.Exit(1)
}
