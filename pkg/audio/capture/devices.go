package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device describes one input-capable audio device.
type Device struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	Default           bool
}

// ListInputDevices returns all devices with at least one input channel.
// Init must have been called.
func ListInputDevices() ([]Device, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("capture: enumerate devices: %w", err)
	}
	def, _ := portaudio.DefaultInputDevice()

	var out []Device
	for i, d := range devs {
		if d.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, Device{
			Index:             i,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
			Default:           def != nil && d.Name == def.Name,
		})
	}
	return out, nil
}
