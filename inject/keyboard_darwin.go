//go:build darwin

package inject

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework ApplicationServices
// #import <ApplicationServices/ApplicationServices.h>
// #include <stdlib.h>
//
// static int typeUnicodeText(const unsigned short *chars, int length) {
//     CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
//     if (source == NULL) return 0;
//
//     CGEventRef down = CGEventCreateKeyboardEvent(source, 0, true);
//     CGEventRef up = CGEventCreateKeyboardEvent(source, 0, false);
//     CGEventKeyboardSetUnicodeString(down, (UniCharCount)length, chars);
//     CGEventKeyboardSetUnicodeString(up, (UniCharCount)length, chars);
//
//     CGEventPost(kCGHIDEventTap, down);
//     CGEventPost(kCGHIDEventTap, up);
//
//     CFRelease(down);
//     CFRelease(up);
//     CFRelease(source);
//     return 1;
// }
//
// static int pasteChord(void) {
//     CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
//     if (source == NULL) return 0;
//
//     const CGKeyCode kVKey = 9;
//     CGEventRef down = CGEventCreateKeyboardEvent(source, kVKey, true);
//     CGEventRef up = CGEventCreateKeyboardEvent(source, kVKey, false);
//     CGEventSetFlags(down, kCGEventFlagMaskCommand);
//     CGEventSetFlags(up, kCGEventFlagMaskCommand);
//
//     CGEventPost(kCGHIDEventTap, down);
//     CGEventPost(kCGHIDEventTap, up);
//
//     CFRelease(down);
//     CFRelease(up);
//     CFRelease(source);
//     return 1;
// }
import "C"

import (
	"errors"
	"unicode/utf16"
	"unsafe"
)

func typeText(text string) error {
	units := utf16.Encode([]rune(text))
	if len(units) == 0 {
		return nil
	}
	cunits := make([]C.ushort, len(units))
	for i, u := range units {
		cunits[i] = C.ushort(u)
	}
	ok := C.typeUnicodeText((*C.ushort)(unsafe.Pointer(&cunits[0])), C.int(len(cunits)))
	if ok == 0 {
		return errors.New("inject: CGEventSourceCreate failed (check Accessibility permission)")
	}
	return nil
}

func synthesizePaste() error {
	if C.pasteChord() == 0 {
		return errors.New("inject: CGEventSourceCreate failed (check Accessibility permission)")
	}
	return nil
}
