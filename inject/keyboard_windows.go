//go:build windows

package inject

import (
	"errors"
	"log/slog"
	"unicode/utf16"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

const (
	inputKeyboard    = 1
	keyEventFUnicode = 0x0004
	keyEventFKeyUp   = 0x0002

	vkControl = 0x11
	vkV       = 0x56
)

// keybdInput mirrors win32's KEYBDINPUT, embedded in the tagged INPUT
// union below.
type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// input mirrors win32's INPUT struct for type==INPUT_KEYBOARD; the
// union's other arms (mouse/hardware) are never populated here, so a
// same-sized padding field stands in for them.
type input struct {
	typ uint32
	ki  keybdInput
	_   [8]byte // pad the union to INPUT's actual size on amd64
}

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

func sendInputs(inputs []input) error {
	if len(inputs) == 0 {
		return nil
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if n == 0 {
		return errors.New("inject: SendInput failed: " + err.Error())
	}
	return nil
}

func typeText(text string) error {
	units := utf16.Encode([]rune(text))
	inputs := make([]input, 0, len(units)*2)
	for _, u := range units {
		inputs = append(inputs,
			input{typ: inputKeyboard, ki: keybdInput{wScan: u, dwFlags: keyEventFUnicode}},
			input{typ: inputKeyboard, ki: keybdInput{wScan: u, dwFlags: keyEventFUnicode | keyEventFKeyUp}},
		)
	}
	return sendInputs(inputs)
}

func synthesizePaste() error {
	err := sendInputs([]input{
		{typ: inputKeyboard, ki: keybdInput{wVk: vkControl}},
		{typ: inputKeyboard, ki: keybdInput{wVk: vkV}},
		{typ: inputKeyboard, ki: keybdInput{wVk: vkV, dwFlags: keyEventFKeyUp}},
		{typ: inputKeyboard, ki: keybdInput{wVk: vkControl, dwFlags: keyEventFKeyUp}},
	})
	if err == nil {
		return nil
	}
	slog.Warn("inject: SendInput paste failed, falling back to OLE SendKeys", "error", err)
	return synthesizePasteOLE()
}

// synthesizePasteOLE drives WScript.Shell.SendKeys through OLE
// automation. SendInput is blocked in some sandboxed/RDP sessions;
// SendKeys goes through a different injection path and recovers in
// those cases.
func synthesizePasteOLE() error {
	if err := ole.CoInitialize(0); err != nil {
		return err
	}
	defer ole.CoUninitialize()

	shell, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return err
	}
	defer shell.Release()

	dispatch, err := shell.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return err
	}
	defer dispatch.Release()

	_, err = oleutil.CallMethod(dispatch, "SendKeys", "^v")
	return err
}
