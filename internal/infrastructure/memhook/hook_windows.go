//go:build windows

package memhook

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/younwookim/dstas/internal/domain/input"
)

var (
	user32      = windows.NewLazySystemDLL("user32.dll")
	findWindowW = user32.NewProc("FindWindowW")
)

// Memory layout of the Prepare To Die Edition build. The debug build
// keeps the same structures at different bases.
const (
	xinputModule = "XINPUT1_3.dll"

	debugMarkAddr = 0x400080

	igtBaseRelease = 0x1378700
	igtBaseDebug   = 0x137C8C0
	igtOffset      = 0x68

	frameBaseRelease = 0x1378604
	frameBaseDebug   = 0x137C7C4
	frameOffset      = 0x58

	padPtrOffset = 0x10C44
	padOffset    = 0x28

	passthroughPatchOffset = 0x6945
)

var debugMark = []byte{0xb4, 0x34, 0x96, 0xce}

// Byte patches toggling the game's own controller read. Disabling it
// stops live hardware from fighting injected state mid-playback.
var (
	passthroughOn  = []byte{0xe8, 0xa6, 0xfb, 0xff, 0xff}
	passthroughOff = []byte{0x90, 0x90, 0x90, 0x90, 0x90}
)

// Hook is an attached game process. It satisfies the engine's Driver and
// Source contracts and hands out a Clock over the in-game timer.
type Hook struct {
	window     windows.HWND
	pid        uint32
	process    windows.Handle
	xinputBase uintptr
	debug      bool
}

// Attach finds the game window by title, opens its process for memory
// access and locates the XInput module.
func Attach(windowTitle string) (*Hook, error) {
	titlePtr, err := syscall.UTF16PtrFromString(windowTitle)
	if err != nil {
		return nil, &AttachError{Target: windowTitle, Err: err}
	}

	hwnd, _, callErr := findWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 {
		return nil, &AttachError{Target: windowTitle, Err: fmt.Errorf("game window not found: %v", callErr)}
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(hwnd), &pid); err != nil {
		return nil, &AttachError{Target: windowTitle, Err: err}
	}

	process, err := windows.OpenProcess(
		windows.PROCESS_VM_OPERATION|windows.PROCESS_VM_READ|windows.PROCESS_VM_WRITE,
		false, pid)
	if err != nil {
		return nil, &AttachError{Target: windowTitle, Err: err}
	}

	h := &Hook{window: windows.HWND(hwnd), pid: pid, process: process}

	h.xinputBase, err = h.moduleBase(xinputModule)
	if err != nil {
		windows.CloseHandle(process)
		return nil, &AttachError{Target: windowTitle, Err: err}
	}

	mark := make([]byte, len(debugMark))
	if err := h.read(debugMarkAddr, mark); err == nil {
		h.debug = bytes.Equal(mark, debugMark)
	}

	return h, nil
}

// Close releases the process handle.
func (h *Hook) Close() error {
	return windows.CloseHandle(h.process)
}

// moduleBase walks the process's module list for the named module.
func (h *Hook) moduleBase(name string) (uintptr, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(
		windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, h.pid)
	if err != nil {
		return 0, fmt.Errorf("module snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Module32First(snapshot, &entry); err == nil; err = windows.Module32Next(snapshot, &entry) {
		if windows.UTF16ToString(entry.Module[:]) == name {
			return uintptr(entry.ModBaseAddr), nil
		}
	}
	return 0, fmt.Errorf("module %s not loaded", name)
}

func (h *Hook) read(addr uintptr, buf []byte) error {
	var done uintptr
	err := windows.ReadProcessMemory(h.process, addr, &buf[0], uintptr(len(buf)), &done)
	if err != nil {
		return fmt.Errorf("read %#x: %w", addr, err)
	}
	if done != uintptr(len(buf)) {
		return fmt.Errorf("read %#x: short read of %d bytes", addr, done)
	}
	return nil
}

func (h *Hook) write(addr uintptr, data []byte) error {
	var done uintptr
	err := windows.WriteProcessMemory(h.process, addr, &data[0], uintptr(len(data)), &done)
	if err != nil {
		return fmt.Errorf("write %#x: %w", addr, err)
	}
	return nil
}

// readUint32 reads a little-endian 32-bit value; the game is a 32-bit
// process, so pointers are read this way too.
func (h *Hook) readUint32(addr uintptr) (uint32, error) {
	buf := make([]byte, 4)
	if err := h.read(addr, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// deref follows a one-level pointer chain: read a pointer at base, fail
// on null, and return it plus offset.
func (h *Hook) deref(base, offset uintptr) (uintptr, error) {
	ptr, err := h.readUint32(base)
	if err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, fmt.Errorf("null pointer at %#x", base)
	}
	return uintptr(ptr) + offset, nil
}

// IGT returns the in-game time counter in milliseconds.
func (h *Hook) IGT() (uint64, error) {
	base := uintptr(igtBaseRelease)
	if h.debug {
		base = igtBaseDebug
	}
	addr, err := h.deref(base, igtOffset)
	if err != nil {
		return 0, err
	}
	v, err := h.readUint32(addr)
	return uint64(v), err
}

// FrameCount returns how many frames the game has displayed since start.
func (h *Hook) FrameCount() (uint64, error) {
	base := uintptr(frameBaseRelease)
	if h.debug {
		base = frameBaseDebug
	}
	addr, err := h.deref(base, frameOffset)
	if err != nil {
		return 0, err
	}
	v, err := h.readUint32(addr)
	return uint64(v), err
}

// Clock returns the in-game timer as a playback clock.
func (h *Hook) Clock() *Clock {
	return NewClock(h.IGT)
}

// padAddr resolves the two-level pointer chain to the controller block.
func (h *Hook) padAddr() (uintptr, error) {
	addr, err := h.deref(h.xinputBase+padPtrOffset, 0)
	if err != nil {
		return 0, err
	}
	return h.deref(addr, padOffset)
}

// Sample reads the live controller state out of the game's own XInput
// block.
func (h *Hook) Sample() (input.State, error) {
	addr, err := h.padAddr()
	if err != nil {
		return input.State{}, err
	}
	var block [padBlockSize]byte
	if err := h.read(addr, block[:]); err != nil {
		return input.State{}, err
	}
	return decodePad(block), nil
}

// Apply writes one controller sample into the game's XInput block.
func (h *Hook) Apply(s input.State) error {
	addr, err := h.padAddr()
	if err != nil {
		return err
	}
	block := encodePad(s)
	return h.write(addr, block[:])
}

// SetPassthrough toggles the game's own controller read. Sessions turn
// it off so injected state is the only input the game sees, and restore
// it on exit.
func (h *Hook) SetPassthrough(enabled bool) error {
	patch := passthroughOff
	if enabled {
		patch = passthroughOn
	}
	return h.write(h.xinputBase+passthroughPatchOffset, patch)
}
