//go:build linux

package sink

import (
	"os"
	"os/exec"
	"strings"
)

func wayland() bool {
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

func copyText(text string) error {
	if wayland() {
		cmd := exec.Command("wl-copy")
		cmd.Stdin = strings.NewReader(text)
		return cmd.Run()
	}
	cmd := exec.Command("xclip", "-selection", "clipboard")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func pasteKeystroke() error {
	if wayland() {
		return exec.Command("wtype", "-M", "ctrl", "-P", "v", "-p", "v", "-m", "ctrl").Run()
	}
	return exec.Command("xdotool", "key", "--clearmodifiers", "ctrl+v").Run()
}
