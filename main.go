package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yumyai/metadraft/logger"
)

// VERSION is stamped into every model this binary produces.
const VERSION = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("metadraft failed", zap.Error(err))
		logger.Sync()
		// the logger is a no-op when setup itself failed
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger.Sync() // Make sure that the buffered is flushed.
}
