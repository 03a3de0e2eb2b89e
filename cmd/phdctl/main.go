// Command phdctl runs admin tasks against the admission database and upload staging area.
package main

import (
	"os"

	"github.com/nitn/phd-admission/internal/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error().Err(err).Msg("phdctl failed")
		os.Exit(1)
	}
}
