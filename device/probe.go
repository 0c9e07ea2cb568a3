package device

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Prober lists the audio outputs the system currently knows about
type Prober interface {
	Outputs(ctx context.Context) ([]Output, error)
}

// ErrUnsupported is returned by probes on platforms without a backend
var ErrUnsupported = errors.New("audio output probing is not supported on this platform")

// SystemProber asks macOS system_profiler for the audio outputs
type SystemProber struct{}

func (SystemProber) Outputs(ctx context.Context) ([]Output, error) {
	if runtime.GOOS != "darwin" {
		return nil, ErrUnsupported
	}
	out, err := exec.CommandContext(ctx, "system_profiler", "SPAudioDataType", "-json").Output()
	if err != nil {
		return nil, errors.Wrap(err, "system_profiler")
	}
	return ParseProfiler(out)
}

var (
	transportKeys = []string{"coreaudio_device_transport", "coreaudio_transport", "transport", "coreaudio_device_interface"}
	defaultKeys   = []string{"coreaudio_device_is_default_output", "coreaudio_default_audio_output_device",
		"coreaudio_default_output_device", "default_output_device", "coreaudio_is_default_output"}
	connectedKeys = []string{"coreaudio_device_is_alive", "device_is_alive", "device_active",
		"device_is_connected", "connected", "device_connected"}
)

// ParseProfiler reads `system_profiler SPAudioDataType -json` output
func ParseProfiler(data []byte) ([]Output, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("system_profiler: invalid JSON")
	}

	var outputs []Output
	gjson.GetBytes(data, "SPAudioDataType").ForEach(func(_, entry gjson.Result) bool {
		entry.Get("_items").ForEach(func(_, item gjson.Result) bool {
			name := firstString(item, "_name", "name")
			if name == "" {
				return true
			}
			transport := firstString(item, transportKeys...)
			_, isDefault := truthy(item, defaultKeys...)
			found, connected := truthy(item, connectedKeys...)
			if !found {
				connected = true
			}
			outputs = append(outputs, Output{
				Name:      name,
				Type:      Classify(name, transport),
				Transport: transport,
				Default:   isDefault,
				Connected: connected,
			})
			return true
		})
		return true
	})
	return outputs, nil
}

func firstString(r gjson.Result, keys ...string) string {
	for _, k := range keys {
		v := r.Get(k)
		if v.Type == gjson.String {
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		}
	}
	return ""
}

// truthy returns whether any key was present and its boolean reading
func truthy(r gjson.Result, keys ...string) (found, value bool) {
	for _, k := range keys {
		v := r.Get(k)
		switch v.Type {
		case gjson.True, gjson.False:
			return true, v.Bool()
		case gjson.Number:
			return true, v.Num != 0
		case gjson.String:
			switch strings.ToLower(strings.TrimSpace(v.Str)) {
			case "yes", "true", "1", "on", "spaudio_yes", "enabled":
				return true, true
			case "no", "false", "0", "off", "spaudio_no", "disabled":
				return true, false
			}
		}
	}
	return false, false
}
