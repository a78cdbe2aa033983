package main

import (
	"os"

	"golang.org/x/term"
)

// watchKeys puts the terminal in raw mode and closes the returned channel
// when Esc, q or Ctrl-C is pressed. restore puts the terminal back. When
// stdin is not a terminal, the channel is never closed.
func watchKeys() (quit <-chan struct{}, restore func()) {
	c := make(chan struct{})
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return c, func() {}
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return c, func() {}
	}
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			switch buf[0] {
			case 27, 'q', 'Q', 3: // Esc, q, Ctrl-C (raw mode swallows SIGINT)
				close(c)
				return
			}
		}
	}()
	return c, func() { term.Restore(fd, oldState) }
}
