//go:build linux

package window

/*
#cgo LDFLAGS: -lX11
#include <stdlib.h>
#include <X11/Xlib.h>
#include <X11/Xatom.h>

// activeWindow resolves the _NET_ACTIVE_WINDOW root property to a
// window id, then reads its _NET_WM_PID property into *outPID. Returns
// 0 if nothing is focused.
static unsigned long activeWindow(Display *d, unsigned long *outPID) {
	Atom activeAtom = XInternAtom(d, "_NET_ACTIVE_WINDOW", True);
	Atom pidAtom = XInternAtom(d, "_NET_WM_PID", True);
	if (activeAtom == None) return 0;

	Atom actualType;
	int actualFormat;
	unsigned long nItems, bytesAfter;
	unsigned char *prop = NULL;

	Window root = DefaultRootWindow(d);
	int status = XGetWindowProperty(d, root, activeAtom, 0, 1, False, XA_WINDOW,
		&actualType, &actualFormat, &nItems, &bytesAfter, &prop);
	if (status != Success || prop == NULL || nItems == 0) {
		if (prop) XFree(prop);
		return 0;
	}
	Window active = *(Window *)prop;
	XFree(prop);

	*outPID = 0;
	if (pidAtom != None && active != 0) {
		unsigned char *pidProp = NULL;
		if (XGetWindowProperty(d, active, pidAtom, 0, 1, False, XA_CARDINAL,
			&actualType, &actualFormat, &nItems, &bytesAfter, &pidProp) == Success
			&& pidProp != NULL && nItems > 0) {
			*outPID = *(unsigned long *)pidProp;
			XFree(pidProp);
		}
	}
	return active;
}
*/
import "C"

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prober reads the active window through the _NET_ACTIVE_WINDOW root
// property, the standard EWMH mechanism window managers publish.
type Prober struct{}

// NewProber creates a Prober.
func NewProber() *Prober {
	return &Prober{}
}

// Current returns the active window's info, or nil if X11 reports
// none focused (including when no display is reachable, e.g.
// headless/Wayland-only sessions).
func (p *Prober) Current() *Info {
	display := C.XOpenDisplay(nil)
	if display == nil {
		return nil
	}
	defer C.XCloseDisplay(display)

	var pid C.ulong
	win := C.activeWindow(display, &pid)
	if win == 0 {
		return nil
	}

	info := &Info{PID: int(pid), WindowID: fmt.Sprintf("0x%x", uint64(win))}
	if pid > 0 {
		if exec, err := execPathForPID(int(pid)); err == nil {
			info.ExecPath = exec
			info.ExecName = filepath.Base(exec)
			info.AppName = info.ExecName
		} else if comm, err := commForPID(int(pid)); err == nil {
			info.AppName = comm
			info.ExecName = comm
		}
	}
	return info
}

func execPathForPID(pid int) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/%d/exe", pid))
}

func commForPID(pid int) (string, error) {
	raw, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
