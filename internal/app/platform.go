package app

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"
)

// detectClipboard returns the clipboard command, if any, and whether yanking
// can work at all: through that command, the native clipboard API, or an
// OSC 52 sequence written to the terminal.
func detectClipboard() ([]string, bool) {
	cmd, ok := detectClipboardInternal(runtime.GOOS, exec.LookPath)
	if ok {
		return cmd, true
	}
	return nil, !clipboard.Unsupported || term.IsTerminal(int(os.Stderr.Fd()))
}

// detectClipboardInternal returns the command that reads text on stdin and
// places it on the system clipboard.
func detectClipboardInternal(goos string, lookPath func(string) (string, error)) ([]string, bool) {
	resolve := func(name string) (string, bool) {
		path, err := lookPath(name)
		return path, err == nil && path != ""
	}

	if strings.EqualFold(goos, "windows") {
		for _, candidate := range []string{"clip.exe", "clip"} {
			if path, ok := resolve(candidate); ok {
				return []string{path}, true
			}
		}
		for _, ps := range []string{"powershell", "powershell.exe", "pwsh"} {
			if path, ok := resolve(ps); ok {
				return []string{path, "-NoLogo", "-NoProfile", "-Command", "Set-Clipboard"}, true
			}
		}
	}

	candidates := []struct {
		name string
		args []string
	}{
		{name: "pbcopy"},
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	}
	for _, c := range candidates {
		if path, ok := resolve(c.name); ok {
			return append([]string{path}, c.args...), true
		}
	}

	return nil, false
}
