package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, toml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.toml")
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validTOML = `
file = "input.ks"
trans_type = "text"
from = "ja"
to = "en"
filter_regexen = ["^[^;*\\[\\n]\\s*[^\\s]+"]

[batchizer_opt]
max_tokens = 500

[[output_regexen]]
usage = { replace = "" }
regex = "\\r\\n"

[[output_regexen]]
usage = { capture = 1 }
regex = "(.+)"

[chatgpt_opt]
max_concurrent = 4

[[chatgpt_opt.api_pool]]
api_key = "key-a"
api_url = "https://api.example.com/v1/chat/completions"
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, validTOML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TransType != TransText {
		t.Fatalf("trans_type = %q", cfg.TransType)
	}
	if cfg.BatchizerOpt.MaxTokens != 500 {
		t.Fatalf("max_tokens = %d", cfg.BatchizerOpt.MaxTokens)
	}
	if len(cfg.ChatGPTOpt.APIPool) != 1 || cfg.ChatGPTOpt.APIPool[0].APIKey != "key-a" {
		t.Fatalf("api_pool = %+v", cfg.ChatGPTOpt.APIPool)
	}
	if !cfg.OutputRegexen[0].Usage.IsReplace() {
		t.Fatalf("output_regexen[0] = %+v, want replace", cfg.OutputRegexen[0].Usage)
	}
	if !cfg.OutputRegexen[1].Usage.IsCapture() || *cfg.OutputRegexen[1].Usage.Capture != 1 {
		t.Fatalf("output_regexen[1] = %+v, want capture = 1", cfg.OutputRegexen[1].Usage)
	}
}

func TestLoadRejectsTooFewOutputRegexen(t *testing.T) {
	toml := `
trans_type = "text"
[batchizer_opt]
max_tokens = 100
[[output_regexen]]
usage = { replace = "" }
regex = "x"
`
	path := writeConfig(t, toml)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for fewer than two output_regexen")
	}
}

func TestLoadRejectsUnknownTransType(t *testing.T) {
	toml := `
trans_type = "bogus"
[batchizer_opt]
max_tokens = 100
[[output_regexen]]
usage = { replace = "" }
regex = "x"
[[output_regexen]]
usage = { capture = 1 }
regex = "y"
`
	path := writeConfig(t, toml)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown trans_type")
	}
}
