//go:build darwin

package sink

import (
	"os/exec"
	"strings"
)

func copyText(text string) error {
	cmd := exec.Command("/usr/bin/pbcopy")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func pasteKeystroke() error {
	const osa = `tell application "System Events" to keystroke "v" using command down`
	return exec.Command("/usr/bin/osascript", "-e", osa).Run()
}
