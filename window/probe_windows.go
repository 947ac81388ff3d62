//go:build windows

package window

import (
	"path/filepath"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow  = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadPID   = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
)

// Prober reads the foreground window through user32, the idiom the
// teacher's pack-mates use for Windows-specific window/process
// detection (golang.org/x/sys/windows for the syscall surface).
type Prober struct{}

// NewProber creates a Prober.
func NewProber() *Prober {
	return &Prober{}
}

// Current returns the foreground window's info, or nil if none is
// focused.
func (p *Prober) Current() *Info {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return nil
	}

	var pid uint32
	procGetWindowThreadPID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))

	title := windowText(hwnd)

	info := &Info{
		Title:    title,
		PID:      int(pid),
		WindowID: windowsHandleString(hwnd),
	}

	if execPath, err := processImagePath(pid); err == nil {
		info.ExecPath = execPath
		info.ExecName = filepath.Base(execPath)
		info.AppName = info.ExecName
	} else {
		info.AppName = title
	}

	return info
}

func windowText(hwnd uintptr) string {
	n, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf)
}

func processImagePath(pid uint32) (string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", err
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", err
	}
	return syscall.UTF16ToString(buf[:size]), nil
}

func windowsHandleString(hwnd uintptr) string {
	return "0x" + uintToHex(uint64(hwnd))
}

func uintToHex(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v%16]
		v /= 16
	}
	return string(buf[i:])
}
