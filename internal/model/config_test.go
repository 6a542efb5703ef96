package model

import "testing"

func TestResolvePrecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		in   Precision
		want Precision
	}{
		{"lmsys/vicuna-13b-v1.5", PrecisionAuto, PrecisionF32},
		{"lmsys/Vicuna-7b", PrecisionAuto, PrecisionF32},
		{"meta-llama/Llama-2-7b-hf", PrecisionAuto, PrecisionF16},
		{"lmsys/vicuna-13b", PrecisionF16, PrecisionF16},
		{"meta-llama/Llama-2-7b-hf", PrecisionF32, PrecisionF32},
	}
	for _, tc := range tests {
		if got := ResolvePrecision(tc.path, tc.in); got != tc.want {
			t.Errorf("ResolvePrecision(%q, %q) = %q, want %q", tc.path, tc.in, got, tc.want)
		}
	}
}

func TestNoiseWindowValidate(t *testing.T) {
	t.Parallel()

	if err := (NoiseWindow{Start: 2, End: 8, Scale: 0.5}).Validate(); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}
	if err := (NoiseWindow{Start: -1, End: 3}).Validate(); err == nil {
		t.Fatal("negative start accepted")
	}
	if err := (NoiseWindow{Start: 5, End: 2}).Validate(); err == nil {
		t.Fatal("inverted window accepted")
	}
}

func TestNoiseWindowContains(t *testing.T) {
	t.Parallel()

	w := NoiseWindow{Start: 2, End: 5}
	if w.Contains(1) || !w.Contains(2) || !w.Contains(4) || w.Contains(5) {
		t.Fatal("half-open interval semantics violated")
	}
	if !(NoiseWindow{}).Empty() {
		t.Fatal("zero window should be empty")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{ModelPath: "m", TokenizerPath: "t"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if err := (Config{TokenizerPath: "t"}).Validate(); err == nil {
		t.Fatal("missing model path accepted")
	}
	if err := (Config{ModelPath: "m"}).Validate(); err == nil {
		t.Fatal("missing tokenizer path accepted")
	}
}

func TestDeviceConfigPrimary(t *testing.T) {
	t.Parallel()

	if got := (DeviceConfig{}).Primary(); got != "cpu" {
		t.Fatalf("expected cpu default, got %q", got)
	}
	d := DeviceConfig{Visible: []string{"cuda:1", "cuda:2"}}
	if got := d.Primary(); got != "cuda:1" {
		t.Fatalf("expected first visible device, got %q", got)
	}
}

func TestGenerateOptionsWindowFor(t *testing.T) {
	t.Parallel()

	shared := GenerateOptions{Window: NoiseWindow{Start: 1, End: 4}}
	if shared.WindowFor(3) != (NoiseWindow{Start: 1, End: 4}) {
		t.Fatal("shared window not returned")
	}

	perRow := GenerateOptions{
		Window:  NoiseWindow{Start: 9, End: 9},
		Windows: []NoiseWindow{{Start: 0, End: 1}, {Start: 2, End: 3}},
	}
	if perRow.WindowFor(1) != (NoiseWindow{Start: 2, End: 3}) {
		t.Fatal("per-row window not returned")
	}
}
