//go:build linux

package clipboard

import (
	"bytes"
	"errors"
	"os/exec"

	"github.com/wailsapp/wails/v3/pkg/application"
)

// No cgo X11 clipboard selection code or clipboard library appears
// anywhere in the retrieval corpus; shelling out to xclip/xsel is the
// standard fallback the wider Go clipboard ecosystem uses on Linux
// when no cgo X11 binding is available (see DESIGN.md).
func getClipboardContent(_ *application.App) (string, error) {
	for _, args := range [][]string{
		{"xclip", "-selection", "clipboard", "-out"},
		{"xsel", "--clipboard", "--output"},
	} {
		out, err := exec.Command(args[0], args[1:]...).Output()
		if err == nil {
			return string(out), nil
		}
	}
	return "", errors.New("clipboard: no working xclip/xsel found")
}

func setClipboardContent(_ *application.App, text string) error {
	for _, args := range [][]string{
		{"xclip", "-selection", "clipboard", "-in"},
		{"xsel", "--clipboard", "--input"},
	} {
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Stdin = bytes.NewReader([]byte(text))
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return errors.New("clipboard: no working xclip/xsel found")
}
