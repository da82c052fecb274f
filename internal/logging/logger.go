// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

// Package logging configures the global zerolog logger for the
// msixunpack command line driver.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure sets the global zerolog logger's level and writer
// according to the given CLI flags.
func Configure(level string, jsonOutput bool, noColor bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if jsonOutput {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}

	_, noColorEnv := os.LookupEnv("NO_COLOR")
	writer := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: noColor || noColorEnv,
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}
