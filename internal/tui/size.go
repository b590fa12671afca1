package tui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// widthHeight is the size used until the first WindowSizeMsg.
func widthHeight() (int, int) {
	w, h := 80, 24
	if tw, th, err := termSize(); err == nil && tw > 0 && th > 0 {
		w, h = tw, th
	}
	return w, h
}

func termSize() (int, int, error) {
	return term.GetSize(os.Stdout.Fd())
}
