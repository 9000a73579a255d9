//go:build linux

package hotkey

import "golang.design/x/hotkey"

var modifierMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1, // Alt is Mod1 on X11
	"super": hotkey.Mod4, // Super/Win is Mod4 on X11
}
