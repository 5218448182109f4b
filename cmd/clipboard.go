package cmd

import (
	"errors"
	"os"

	"github.com/aymanbagabas/go-osc52/v2"
	"go.uber.org/zap"

	"zomboid-mod-manager/logger"
)

var errNoTerminal = errors.New("clipboard needs a terminal on stderr")

// copyToClipboard asks the terminal to place text on the system clipboard
// using the OSC 52 escape sequence. Errors are logged and returned for
// display only.
func copyToClipboard(text string) error {
	if !isTerminal(os.Stderr) {
		logger.Log.Warnw("Clipboard copy skipped", zap.Error(errNoTerminal))
		return errNoTerminal
	}

	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(os.Stderr); err != nil {
		logger.Log.Warnw("Clipboard copy failed", zap.Error(err))
		return err
	}
	logger.Log.Debugw("Copied export to clipboard", zap.Int("bytes", len(text)))
	return nil
}
