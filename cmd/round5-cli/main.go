// Package main provides the round5-cli command line interface for round5
// key encapsulation.
package main

import (
	"fmt"
	"io"
	"os"

	round5 "github.com/BackendStack21/round5-go"
	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
)

const appName = "round5-cli"

// Version is set at build time.
var Version = "DEV"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      appName,
		Usage:     "Round5 post-quantum key encapsulation",
		UsageText: appName + " [global options] command [command options]",
		Version:   fmt.Sprintf("%s (library %s)", Version, round5.Version),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    logLevelFlag,
				Value:   "warn",
				Usage:   "Log level: debug, info, warn, error",
				EnvVars: []string{"ROUND5_LOGLEVEL"},
			},
		},
		Before:   setupLogger,
		Commands: commands(),
		ExitErrHandler: func(*cli.Context, error) {
			// main reports errors; tests inspect them.
		},
	}
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "keygen",
			Usage: "Generate a KEM key pair",
			Flags: append(append(contextFlags(), outputFlags()...),
				&cli.StringFlag{Name: "seed", Usage: "Hex seed of 3*kappa_bytes for deterministic key generation"},
			),
			Action: keygenAction,
		},
		{
			Name:    "encapsulate",
			Aliases: []string{"encap"},
			Usage:   "Create a shared secret and its ciphertext for a public key",
			Flags: append(append(contextFlags(), outputFlags()...),
				&cli.StringFlag{Name: "public-key", Aliases: []string{"pk"}, Usage: "Public key file", Required: true},
				&cli.StringFlag{Name: "message", Usage: "Hex message for deterministic encapsulation"},
			),
			Action: encapsulateAction,
		},
		{
			Name:    "decapsulate",
			Aliases: []string{"decap"},
			Usage:   "Recover a shared secret from a ciphertext",
			Flags: append(append(contextFlags(), outputFlags()...),
				&cli.StringFlag{Name: "secret-key", Aliases: []string{"sk"}, Usage: "Key pair or secret key file", Required: true},
				&cli.StringFlag{Name: "ciphertext", Aliases: []string{"ct"}, Usage: "Encapsulation file", Required: true},
			),
			Action: decapsulateAction,
		},
		{
			Name:    "encrypt",
			Aliases: []string{"enc"},
			Usage:   "Encrypt a message with KEM+DEM",
			Flags: append(append(contextFlags(), outputFlags()...),
				&cli.StringFlag{Name: "public-key", Aliases: []string{"pk"}, Usage: "Public key file", Required: true},
				&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Message text"},
				&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Read the message from a file"},
			),
			Action: encryptAction,
		},
		{
			Name:    "decrypt",
			Aliases: []string{"dec"},
			Usage:   "Decrypt a message produced by encrypt",
			Flags: append(append(contextFlags(), outputFlags()...),
				&cli.StringFlag{Name: "secret-key", Aliases: []string{"sk"}, Usage: "Key pair or secret key file", Required: true},
				&cli.StringFlag{Name: "ciphertext", Aliases: []string{"ct"}, Usage: "Encrypted message file", Required: true},
			),
			Action: decryptAction,
		},
		{
			Name:  "matrix",
			Usage: "Expand a seed into a public matrix",
			Flags: append(append(contextFlags(), outputFlags()...),
				&cli.StringFlag{Name: "seed", Usage: "Hex seed of kappa_bytes; defaults to the canonical fixed seed"},
				&cli.IntFlag{Name: "head", Value: 16, Usage: "Number of leading elements to print"},
			),
			Action: matrixAction,
		},
		{
			Name:  "params",
			Usage: "Show a parameter set and its derived sizes",
			Flags: append(append(contextFlags(), outputFlags()...),
				&cli.BoolFlag{Name: "yaml", Usage: "Print as a YAML parameter file"},
				&cli.BoolFlag{Name: "all", Usage: "Show every shipped parameter set"},
			),
			Action: paramsAction,
		},
		{
			Name:  "benchmark",
			Usage: "Measure operation latency",
			Flags: append(contextFlags(),
				&cli.IntFlag{Name: "iterations", Aliases: []string{"n"}, Value: 10, Usage: "Iterations per operation"},
				&cli.BoolFlag{Name: "metrics", Usage: "Print Prometheus text exposition of the latency histograms"},
			),
			Action: benchmarkAction,
		},
	}
}

func contextFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Value: string(round5.R5ND1KEM0), Usage: "Shipped parameter set"},
		&cli.StringFlag{Name: "params", Usage: "YAML parameter file, overrides --level"},
		&cli.StringFlag{Name: "fixed-seed", Usage: "Hex seed for the tau = 1 fixed matrix"},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (default: stdout)"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(FormatBase64), Usage: "Byte encoding: hex or base64"},
	}
}
