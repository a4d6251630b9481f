// Package tty switches the host terminal in and out of the non-canonical,
// no-echo mode the console traps need to see single key presses.
package tty

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal remembers the attributes of a terminal so they can be restored.
type Terminal struct {
	file     *os.File
	original unix.Termios
	raw      bool
}

// IsTerminal reports whether file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	return term.IsTerminal(int(file.Fd()))
}

// Open prepares file for raw mode. Nothing changes until EnableRawMode.
func Open(file *os.File) *Terminal {
	return &Terminal{file: file}
}

// EnableRawMode turns off line buffering and echo.
func (t *Terminal) EnableRawMode() error {
	if t.raw {
		return nil
	}
	if err := termios.Tcgetattr(t.file.Fd(), &t.original); err != nil {
		return err
	}

	attr := t.original
	attr.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(t.file.Fd(), termios.TCSANOW, &attr); err != nil {
		return err
	}

	t.raw = true
	return nil
}

// Restore puts back the attributes saved by EnableRawMode.
func (t *Terminal) Restore() error {
	if !t.raw {
		return nil
	}
	t.raw = false
	return termios.Tcsetattr(t.file.Fd(), termios.TCSANOW, &t.original)
}
