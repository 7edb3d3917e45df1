package main

import (
	"time"

	"github.com/BackendStack21/round5-go/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const logLevelFlag = "loglevel"

const loggerKey = "logger"

// setupLogger installs a console logger at --loglevel for the CLI and the
// library.
func setupLogger(c *cli.Context) error {
	level, err := zerolog.ParseLevel(c.String(logLevelFlag))
	if err != nil {
		return errors.Wrapf(err, "invalid --%s", logLevelFlag)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: c.App.ErrWriter, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[loggerKey] = &log
	utils.SetLogger(log)
	return nil
}

func loggerFrom(c *cli.Context) *zerolog.Logger {
	if log, ok := c.App.Metadata[loggerKey].(*zerolog.Logger); ok {
		return log
	}
	return utils.Logger()
}
