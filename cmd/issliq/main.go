package main

import (
	"os"

	"github.com/neuraudit/issliq/internal/exitcode"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
