package main

import (
	"strings"
	"testing"
)

func TestProviderRejectsUnknownEngine(t *testing.T) {
	engineName = "llamacpp"
	defer func() { engineName = "toy" }()

	if _, err := provider(); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

func TestRenderPromptsAppliesTemplate(t *testing.T) {
	templateName = "llama-2"
	defer func() { templateName = "raw" }()

	out, err := renderPrompts([]string{"hello"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || !strings.Contains(out[0], "[INST]") {
		t.Fatalf("llama-2 rendering missing role markers: %q", out)
	}
}

func TestModelConfigTokenizerDefaultsToModelPath(t *testing.T) {
	modelPath = "/models/vicuna-7b"
	tokenizerPath = ""
	defer func() { modelPath, tokenizerPath = "", "" }()

	cfg := modelConfig()
	if cfg.TokenizerPath != "/models/vicuna-7b" {
		t.Fatalf("expected tokenizer path to fall back to model path, got %q", cfg.TokenizerPath)
	}
}
