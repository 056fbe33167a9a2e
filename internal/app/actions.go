package app

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	statepkg "github.com/kk-code-lab/rchat/internal/state"
	"github.com/kk-code-lab/rchat/internal/transcript"
)

var (
	commandBuilder = exec.Command
	// osc52Output is the terminal that receives OSC 52 clipboard sequences.
	osc52Output io.Writer = os.Stderr
)

// handleClipboard copies the marked message and reports the outcome to the
// reducer, which starts the status line flash or records the error.
func (app *Application) handleClipboard() bool {
	if !app.clipboardAvail {
		return false
	}
	msg, ok := app.state.MarkedMessage()
	if !ok {
		return false
	}
	err := app.writeClipboard(clipboardText(msg, runtime.GOOS))
	app.reduce(statepkg.YankResultAction{Err: err})
	return true
}

// writeClipboard prefers the detected clipboard command, then the native
// clipboard API, then asks the terminal to store the text (OSC 52), which
// also works over SSH.
func (app *Application) writeClipboard(text string) error {
	if len(app.clipboardCmd) > 0 {
		return copyToClipboard(app.clipboardCmd, text)
	}
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		}
	}
	return writeOSC52(osc52Output, text, os.Getenv("TMUX") != "")
}

func writeOSC52(w io.Writer, text string, tmux bool) error {
	seq := osc52.New(text)
	if tmux {
		seq = seq.Tmux()
	}
	if _, err := seq.WriteTo(w); err != nil {
		return fmt.Errorf("clipboard osc52: %w", err)
	}
	return nil
}

func copyToClipboard(command []string, text string) error {
	cmd := commandBuilder(command[0], command[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard %s: %w", command[0], err)
	}
	return nil
}

// clipboardText is the message text, or its media references when it has
// none. Line endings follow the platform convention.
func clipboardText(msg transcript.Message, goos string) string {
	text := msg.Text
	if text == "" {
		uris := make([]string, 0, len(msg.Media))
		for _, m := range msg.Media {
			uris = append(uris, m.URI)
		}
		text = strings.Join(uris, "\n")
	}
	if strings.EqualFold(goos, "windows") {
		text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\n", "\r\n")
	}
	return text
}
