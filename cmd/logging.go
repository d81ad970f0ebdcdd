package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"

	"github.com/katalvlaran/nettopo/config"
)

// newLogger builds the process logger. verbose forces debug level.
func newLogger(cfg config.Log, verbose bool, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = log.DebugLevel
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.Format == config.FormatJSON {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{
			DisableColors: !isTerminal(out),
			FullTimestamp: true,
		})
	}
	return logger, nil
}

func isTerminal(w io.Writer) bool {
	switch v := w.(type) {
	case *os.File:
		return isatty.IsTerminal(v.Fd()) || isatty.IsCygwinTerminal(v.Fd())
	default:
		return false
	}
}
