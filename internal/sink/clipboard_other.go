//go:build !linux && !darwin

package sink

import "errors"

var errUnsupported = errors.New("sink: clipboard access not supported on this platform")

func copyText(string) error { return errUnsupported }

func pasteKeystroke() error { return errUnsupported }
