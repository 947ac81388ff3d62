//go:build linux

package inject

/*
#cgo LDFLAGS: -lX11 -lXtst
#include <X11/Xlib.h>
#include <X11/extensions/XTest.h>
#include <X11/keysym.h>
#include <stdlib.h>

static Display *openDisplayOrNull() {
	return XOpenDisplay(NULL);
}

static int sendUnicodeRune(Display *d, unsigned int codepoint) {
	KeySym sym;
	if (codepoint < 0x100) {
		sym = codepoint;
	} else {
		sym = 0x01000000 | codepoint;
	}
	KeyCode code = XKeysymToKeycode(d, sym);
	if (code == 0) return 0;

	XTestFakeKeyEvent(d, code, True, 0);
	XTestFakeKeyEvent(d, code, False, 0);
	XFlush(d);
	return 1;
}

static void sendPasteChord(Display *d) {
	KeyCode ctrl = XKeysymToKeycode(d, XK_Control_L);
	KeyCode v = XKeysymToKeycode(d, XK_v);
	XTestFakeKeyEvent(d, ctrl, True, 0);
	XTestFakeKeyEvent(d, v, True, 0);
	XTestFakeKeyEvent(d, v, False, 0);
	XTestFakeKeyEvent(d, ctrl, False, 0);
	XFlush(d);
}
*/
import "C"

import "errors"

func withDisplay(fn func(d *C.Display) error) error {
	d := C.openDisplayOrNull()
	if d == nil {
		return errors.New("inject: cannot open X display")
	}
	defer C.XCloseDisplay(d)
	return fn(d)
}

func typeText(text string) error {
	return withDisplay(func(d *C.Display) error {
		for _, r := range text {
			if C.sendUnicodeRune(d, C.uint(r)) == 0 {
				return errors.New("inject: no keycode mapping for rune")
			}
		}
		return nil
	})
}

func synthesizePaste() error {
	return withDisplay(func(d *C.Display) error {
		C.sendPasteChord(d)
		return nil
	})
}
