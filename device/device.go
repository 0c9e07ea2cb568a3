// Package device watches the system's default audio output and reports
// when an external output (headphones, Bluetooth, USB, HDMI) goes away.
package device

import "strings"

type OutputType int

const (
	OutputUnknown    OutputType = iota
	OutputBuiltIn               // Built-in speakers
	OutputBluetooth             // Bluetooth audio device
	OutputUSB                   // USB audio device
	OutputHDMI                  // HDMI or DisplayPort audio
	OutputHeadphones            // Wired headphones
)

func (t OutputType) String() string {
	switch t {
	case OutputBuiltIn:
		return "built-in"
	case OutputBluetooth:
		return "bluetooth"
	case OutputUSB:
		return "usb"
	case OutputHDMI:
		return "hdmi"
	case OutputHeadphones:
		return "headphones"
	default:
		return "unknown"
	}
}

// External reports whether the output can disappear under the user
func (t OutputType) External() bool {
	switch t {
	case OutputBluetooth, OutputUSB, OutputHDMI, OutputHeadphones:
		return true
	}
	return false
}

// Output is one audio output as reported by the system
type Output struct {
	Name      string
	Type      OutputType
	Transport string
	Default   bool
	Connected bool
}

var (
	bluetoothNames = []string{"bluetooth", "airpods", "beats", "sony wh", "sony wf", "bose",
		"jabra", "sennheiser", "jbl", "marshall", "b&o", "bang & olufsen", "wireless"}
	builtInNames = []string{"built-in", "internal", "macbook", "imac", "mac mini", "mac pro", "speakers"}
	usbNames     = []string{"usb", "dac", "audio interface"}
	hdmiNames    = []string{"hdmi", "displayport", "display audio"}
	phoneNames   = []string{"headphone", "headset"}
)

// Classify guesses the output type from its transport, falling back to
// well-known device names
func Classify(name, transport string) OutputType {
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "bluetooth", "wireless", "ble", "coreaudio_device_type_bluetooth":
		return OutputBluetooth
	case "usb", "usb audio", "usbaudio", "coreaudio_device_type_usb":
		return OutputUSB
	case "hdmi", "displayport", "display port", "thunderbolt", "coreaudio_device_type_hdmi":
		return OutputHDMI
	case "built-in", "internal", "coreaudio_device_type_builtin":
		return OutputBuiltIn
	case "headphone", "headset", "line out", "3.5mm", "analog":
		return OutputHeadphones
	}

	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case containsAny(n, bluetoothNames):
		return OutputBluetooth
	case containsAny(n, builtInNames):
		return OutputBuiltIn
	case containsAny(n, usbNames):
		return OutputUSB
	case containsAny(n, hdmiNames):
		return OutputHDMI
	case containsAny(n, phoneNames):
		return OutputHeadphones
	}
	return OutputUnknown
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// sameDevice matches names loosely; system tools disagree on suffixes
func sameDevice(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// current picks the default connected output, then any default, then
// the first connected one
func current(outputs []Output) *Output {
	var fallback *Output
	for i := range outputs {
		o := &outputs[i]
		if o.Default && o.Connected {
			return o
		}
		if o.Default && fallback == nil {
			fallback = o
			continue
		}
		if fallback == nil && o.Connected {
			fallback = o
		}
	}
	return fallback
}
