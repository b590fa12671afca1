package ui_test

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/ui"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	ui.SetOutput(&out, &errOut)
	ui.SetTheme("mono")
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout, os.Stderr)
		ui.SetColorForcing(false, false)
		ui.SetTheme("classic")
	})
	return &out, &errOut
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ui.ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░░░░░░   0%", ui.ProgressBar(0, 0, 10))
	assert.Equal(t, "█████ 100%", ui.ProgressBar(3, 3, 1))
}

func TestPanelFramesEveryLine(t *testing.T) {
	out, _ := capture(t)
	ui.Panel("Lists", []string{"Groceries", "a much longer line here"})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "+- Lists "))
	width := utf8.RuneCountInString(lines[0])
	for _, ln := range lines {
		assert.Equal(t, width, utf8.RuneCountInString(ln), ln)
	}
}

func TestOKAndFailUseTheirStreams(t *testing.T) {
	out, errOut := capture(t)
	ui.OK("saved")
	ui.Fail("nope")
	ui.Hint("try again")

	assert.Equal(t, "ok saved\n", out.String())
	assert.Equal(t, "error: nope\nHint: try again\n", errOut.String())
}
