package device

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		transport string
		want      OutputType
	}{
		{"MacBook Pro Speakers", "coreaudio_device_type_builtin", OutputBuiltIn},
		{"Whatever", "bluetooth", OutputBluetooth},
		{"Alex's AirPods Pro", "", OutputBluetooth},
		{"MacBook Air Speakers", "", OutputBuiltIn},
		{"Scarlett USB", "", OutputUSB},
		{"LG HDMI", "", OutputHDMI},
		{"External Headphones", "", OutputHeadphones},
		{"Mystery Box", "", OutputUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.name, tt.transport); got != tt.want {
			t.Errorf("Classify(%q, %q) = %v, want %v", tt.name, tt.transport, got, tt.want)
		}
	}
}

func TestOutputTypeExternal(t *testing.T) {
	if OutputBuiltIn.External() || OutputUnknown.External() {
		t.Fatal("built-in and unknown outputs are not external")
	}
	for _, ot := range []OutputType{OutputBluetooth, OutputUSB, OutputHDMI, OutputHeadphones} {
		if !ot.External() {
			t.Errorf("%v should be external", ot)
		}
	}
}

func TestParseProfiler(t *testing.T) {
	data := []byte(`{
	  "SPAudioDataType": [{
	    "_name": "coreaudio_device",
	    "_items": [
	      {"_name": "AirPods", "coreaudio_device_transport": "coreaudio_device_type_bluetooth",
	       "coreaudio_default_audio_output_device": "spaudio_yes"},
	      {"_name": "MacBook Pro Speakers", "coreaudio_device_transport": "coreaudio_device_type_builtin",
	       "coreaudio_device_is_alive": "spaudio_no"},
	      {"coreaudio_device_transport": "usb"}
	    ]
	  }]
	}`)

	outputs, err := ParseProfiler(data)
	if err != nil {
		t.Fatalf("ParseProfiler() error = %v", err)
	}
	if len(outputs) != 2 {
		t.Fatalf("got %d outputs, want 2: %+v", len(outputs), outputs)
	}

	pods := outputs[0]
	if pods.Name != "AirPods" || pods.Type != OutputBluetooth || !pods.Default || !pods.Connected {
		t.Errorf("unexpected first output: %+v", pods)
	}
	speakers := outputs[1]
	if speakers.Type != OutputBuiltIn || speakers.Default || speakers.Connected {
		t.Errorf("unexpected second output: %+v", speakers)
	}
}

func TestParseProfilerInvalid(t *testing.T) {
	if _, err := ParseProfiler([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
