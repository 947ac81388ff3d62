// Package window implements the focused-window probe (C13): which
// app currently has focus, and whether it looks like a text-input
// context.
package window

import "strings"

// Info describes the focused window. A nil *Info from Current means
// no window is focused.
type Info struct {
	AppName   string
	Title     string
	PID       int
	ExecName  string
	ExecPath  string
	WindowID  string
}

// textInputApps is the closed known-list of editors, browsers, chat
// apps, terminals, notes apps, and IDEs that IsTextInputContext
// matches against. It is configuration, not algorithm.
var textInputApps = []string{
	"code", "visual studio code", "sublime text", "intellij", "goland",
	"pycharm", "webstorm", "android studio", "xcode", "vim", "neovim",
	"emacs", "notepad", "notepad++", "textedit", "notes", "obsidian",
	"bear", "typora",
	"chrome", "google chrome", "firefox", "safari", "edge", "microsoft edge",
	"brave", "arc",
	"slack", "discord", "telegram", "whatsapp", "messages", "teams",
	"zoom", "signal",
	"terminal", "iterm", "iterm2", "windows terminal", "powershell",
	"cmd.exe", "alacritty", "kitty", "wezterm", "konsole", "gnome-terminal",
	"mail", "outlook", "thunderbird",
	"word", "microsoft word", "pages", "excel", "numbers",
}

// IsTextInputContext heuristically reports whether info's app name
// matches a known text-input-capable application, via case-insensitive
// substring match.
func IsTextInputContext(info *Info) bool {
	if info == nil || info.AppName == "" {
		return false
	}
	name := strings.ToLower(info.AppName)
	for _, known := range textInputApps {
		if strings.Contains(name, known) {
			return true
		}
	}
	return false
}
