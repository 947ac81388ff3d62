// Package clipboard reads and writes the OS clipboard for the input
// injector (C14)'s Clipboard/ClipboardOnly strategies.
package clipboard

import (
	"github.com/wailsapp/wails/v3/pkg/application"
)

// GetText returns the clipboard's current text content.
func GetText(app *application.App) (string, error) {
	return getClipboardContent(app)
}

// SetText replaces the clipboard's text content.
func SetText(app *application.App, text string) error {
	return setClipboardContent(app, text)
}
