// Package hotkey registers a global toggle hotkey.
package hotkey

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"

	"github.com/MrWong99/murmur/internal/config"
)

// Key repeat on a held key fires Keydown repeatedly; presses inside this
// window are ignored.
const debounceInterval = 300 * time.Millisecond

// Handler owns a single registered global hotkey and invokes the toggle
// callback on each distinct press.
type Handler struct {
	mu       sync.Mutex
	hk       *hotkey.Hotkey
	onToggle func()
	stopCh   chan struct{}
}

// New creates a Handler that calls onToggle on every hotkey press.
func New(onToggle func()) *Handler {
	return &Handler{onToggle: onToggle}
}

// Register parses cfg and registers the hotkey with the window system.
func (h *Handler) Register(cfg config.HotkeyConfig) error {
	key, ok := keyMap[strings.ToLower(cfg.Key)]
	if !ok {
		return fmt.Errorf("hotkey: unknown key %q", cfg.Key)
	}

	mods := make([]hotkey.Modifier, 0, len(cfg.Modifiers))
	for _, m := range cfg.Modifiers {
		mod, ok := modifierMap[strings.ToLower(m)]
		if !ok {
			return fmt.Errorf("hotkey: unknown modifier %q", m)
		}
		mods = append(mods, mod)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.hk != nil {
		return fmt.Errorf("hotkey: already registered")
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("hotkey: register %s: %w", cfg.Key, err)
	}

	h.hk = hk
	h.stopCh = make(chan struct{})
	go h.listen(hk, h.stopCh)
	return nil
}

func (h *Handler) listen(hk *hotkey.Hotkey, stopCh chan struct{}) {
	var lastPress time.Time
	for {
		select {
		case <-stopCh:
			return
		case _, ok := <-hk.Keydown():
			if !ok {
				return
			}
			now := time.Now()
			if now.Sub(lastPress) < debounceInterval {
				continue
			}
			lastPress = now
			if h.onToggle != nil {
				h.onToggle()
			}
		case _, ok := <-hk.Keyup():
			if !ok {
				return
			}
		}
	}
}

// Unregister releases the hotkey and stops the listener goroutine.
func (h *Handler) Unregister() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopCh != nil {
		close(h.stopCh)
		h.stopCh = nil
	}
	if h.hk != nil {
		err := h.hk.Unregister()
		h.hk = nil
		if err != nil {
			return fmt.Errorf("hotkey: unregister: %w", err)
		}
	}
	return nil
}

// RunOnMainThread runs fn on the process main thread. macOS requires hotkey
// registration to happen there.
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}

var keyMap = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"return": hotkey.KeyReturn,
	"tab":    hotkey.KeyTab,
	"a":      hotkey.KeyA,
	"b":      hotkey.KeyB,
	"c":      hotkey.KeyC,
	"d":      hotkey.KeyD,
	"e":      hotkey.KeyE,
	"f":      hotkey.KeyF,
	"g":      hotkey.KeyG,
	"h":      hotkey.KeyH,
	"i":      hotkey.KeyI,
	"j":      hotkey.KeyJ,
	"k":      hotkey.KeyK,
	"l":      hotkey.KeyL,
	"m":      hotkey.KeyM,
	"n":      hotkey.KeyN,
	"o":      hotkey.KeyO,
	"p":      hotkey.KeyP,
	"q":      hotkey.KeyQ,
	"r":      hotkey.KeyR,
	"s":      hotkey.KeyS,
	"t":      hotkey.KeyT,
	"u":      hotkey.KeyU,
	"v":      hotkey.KeyV,
	"w":      hotkey.KeyW,
	"x":      hotkey.KeyX,
	"y":      hotkey.KeyY,
	"z":      hotkey.KeyZ,
	"f1":     hotkey.KeyF1,
	"f2":     hotkey.KeyF2,
	"f3":     hotkey.KeyF3,
	"f4":     hotkey.KeyF4,
	"f5":     hotkey.KeyF5,
	"f6":     hotkey.KeyF6,
	"f7":     hotkey.KeyF7,
	"f8":     hotkey.KeyF8,
	"f9":     hotkey.KeyF9,
	"f10":    hotkey.KeyF10,
	"f11":    hotkey.KeyF11,
	"f12":    hotkey.KeyF12,
}
