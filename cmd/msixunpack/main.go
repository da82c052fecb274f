// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

// Command msixunpack extracts the contents of an MSIX/AppX package to
// a directory, validating every file's blocks against the package's
// block map as it streams them to disk.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/msixread"
	"github.com/woozymasta/msixread/internal/logging"
)

// unpackCmd is the CLI's single command, named "unpack" per the
// driver's flag surface: -p/-d are required, --mv/--sv/--ss select
// which validators run. kong short flags must be a single rune, so the
// two-character mv/sv/ss switches are long names rather than short
// ones.
type unpackCmd struct {
	Package string `short:"p" required:"" type:"existingfile" help:"Path to the MSIX/AppX package."`
	Dest    string `short:"d" required:"" help:"Destination directory."`

	SkipManifestValidation      bool `name:"mv" help:"Skip manifest footprint validation."`
	AllowSignatureOriginUnknown bool `name:"sv" help:"Allow unknown signature origin (carried for parity; has no effect)."`
	SkipSignatureValidation     bool `name:"ss" help:"Skip signature footprint validation."`

	Workers       int  `short:"w" default:"0" help:"Number of concurrent unpack workers (0 = GOMAXPROCS)."`
	SkipFootprint bool `help:"Do not write AppxManifest.xml, AppxBlockMap.xml, AppxSignature.p7x, [Content_Types].xml and AppxMetadata/CodeIntegrity.cat."`
}

// Cli is the top-level command-line grammar.
type Cli struct {
	LogLevel   string `name:"log-level" enum:"trace,debug,info,warn,error" default:"info" help:"Log level."`
	LogJSON    bool   `name:"log-json" help:"Emit logs as JSON."`
	LogNoColor bool   `name:"log-no-color" help:"Disable ANSI colors in console log output."`

	Unpack unpackCmd `cmd:"" help:"Extract a package's contents to a directory."`
}

func main() {
	var cli Cli
	parser := kong.Parse(&cli,
		kong.Name("msixunpack"),
		kong.Description("Read and extract MSIX/AppX packages."),
		kong.UsageOnError(),
	)

	logging.Configure(cli.LogLevel, cli.LogJSON, cli.LogNoColor)
	msixread.SetLogger(log.Logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := parser.Run(&cli, ctx); err != nil {
		log.Fatal().Err(err).Msg("msixunpack failed")
	}
}

// Run executes the unpack command; kong invokes it by reflection since
// it matches the Run(ctx) method convention.
func (c *unpackCmd) Run(ctx context.Context) error {
	pkg, err := msixread.OpenWithOptions(c.Package, msixread.OpenOptions{
		Validation: msixread.ValidationOptions{
			SkipManifestValidation:      c.SkipManifestValidation,
			SkipSignatureValidation:     c.SkipSignatureValidation,
			AllowSignatureOriginUnknown: c.AllowSignatureOriginUnknown,
		},
	})
	if err != nil {
		return err
	}
	defer func() { _ = pkg.Close() }()

	result, err := pkg.Unpack(ctx, c.Dest, msixread.UnpackOptions{
		Workers:       c.Workers,
		SkipFootprint: c.SkipFootprint,
		OnEntryDone: func(p msixread.UnpackEntryProgress) {
			log.Debug().Str("name", p.Name).Int64("bytes", p.Written).Msg("wrote file")
		},
	})
	if err != nil {
		return err
	}

	log.Info().
		Int("files", result.WrittenFiles).
		Int64("bytes", result.BytesWritten).
		Dur("duration", result.Duration).
		Msg("unpack complete")
	return nil
}
