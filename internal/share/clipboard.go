package share

import (
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// WriteClipboard writes text to the system clipboard. Over SSH, or when no
// clipboard utility is installed, it falls back to an OSC 52 escape on
// stderr so the local terminal picks it up.
func WriteClipboard(text string) error {
	if os.Getenv("SSH_TTY") == "" && !clipboard.Unsupported {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		}
	}
	return writeOSC52(os.Stderr, text, os.Getenv("TERM"), os.Getenv("TMUX") != "")
}

func writeOSC52(w io.Writer, text, term string, inTmux bool) error {
	seq := osc52.New(text)
	switch {
	case inTmux:
		seq = seq.Tmux()
	case strings.HasPrefix(term, "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}
