//go:build darwin

package window

import "github.com/progrium/darwinkit/macos/appkit"

// Prober reads the frontmost application through the shared
// NSWorkspace, following the teacher's pack-mate darwinkit idiom for
// process/window detection.
type Prober struct {
	workspace appkit.Workspace
}

// NewProber creates a Prober bound to the shared workspace.
func NewProber() *Prober {
	return &Prober{workspace: appkit.Workspace_SharedWorkspace()}
}

// Current returns the frontmost application, or nil if none is
// focused. macOS accessibility APIs would be required for a true
// per-window title; this reports the application's localized name in
// both AppName and Title, matching the pack's own caveat.
func (p *Prober) Current() *Info {
	front := p.workspace.FrontmostApplication()
	if front.Ptr() == nil {
		return nil
	}

	name := front.LocalizedName()
	if name == "" {
		return nil
	}

	info := &Info{
		AppName: name,
		Title:   name,
		PID:     int(front.ProcessIdentifier()),
	}
	if bundleID := front.BundleIdentifier(); bundleID != "" {
		info.ExecName = bundleID
	}
	return info
}
