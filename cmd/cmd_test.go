package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mono57/emvqr/pkg/emvqr"
)

const shopPayload = "0002015904Shop6304E90D"

// execute runs the root command with args. Flag variables are reset first
// because cobra keeps them between runs.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cfgFile = defaultConfigFile
	verbose = false
	logBackend = ""
	encodeSet = nil
	encodeInputFormat = ""
	decodeView = "friendly"
	decodeFormat = "json"
	decodeOut = ""
	dryRun = false
	filePath = ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCRCCommand(t *testing.T) {
	out, err := execute(t, "", "crc", "0002015904Shop6304")
	if err != nil {
		t.Fatalf("crc: %v", err)
	}
	if out != "E90D\n" {
		t.Fatalf("crc output = %q", out)
	}
}

func TestVerifyCommand(t *testing.T) {
	out, err := execute(t, "", "verify", shopPayload)
	if err != nil || out != "valid\n" {
		t.Fatalf("verify valid: out=%q err=%v", out, err)
	}

	out, err = execute(t, "", "verify", "0002015904Shop6304E900")
	if !errors.Is(err, errInvalidPayload) || out != "invalid\n" {
		t.Fatalf("verify invalid: out=%q err=%v", out, err)
	}
}

func TestEncodeCommand(t *testing.T) {
	out, err := execute(t, "", "encode", "--set", "59=Shop")
	if err != nil {
		t.Fatalf("encode --set: %v", err)
	}
	if out != shopPayload+"\n" {
		t.Fatalf("encode --set output = %q", out)
	}

	out, err = execute(t, `{"merchant_name":"Shop"}`, "encode")
	if err != nil {
		t.Fatalf("encode stdin: %v", err)
	}
	if out != shopPayload+"\n" {
		t.Fatalf("encode stdin output = %q", out)
	}

	path := filepath.Join(t.TempDir(), "fields.yaml")
	if err := os.WriteFile(path, []byte("merchant_name: Shop\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "", "encode", path)
	if err != nil {
		t.Fatalf("encode file: %v", err)
	}
	if out != shopPayload+"\n" {
		t.Fatalf("encode file output = %q", out)
	}

	if _, err := execute(t, `{"currency":"XYZ"}`, "encode"); !errors.Is(err, emvqr.ErrUnsupportedCurrency) {
		t.Fatalf("encode unknown currency: err=%v", err)
	}
}

func TestDecodeCommand(t *testing.T) {
	out, err := execute(t, "", "decode", "--view", "raw", shopPayload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "{\n  \"00\": \"01\",\n  \"59\": \"Shop\",\n  \"63\": \"E90D\"\n}\n"
	if out != want {
		t.Fatalf("decode output = %q, want %q", out, want)
	}

	out, err = execute(t, "", "decode", "--view", "named", "--format", "yaml", shopPayload)
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if !strings.Contains(out, "merchant_name: Shop") || strings.Contains(out, "63") {
		t.Fatalf("decode yaml output = %q", out)
	}

	dst := filepath.Join(t.TempDir(), "fields.cbor")
	if _, err := execute(t, "", "decode", "--format", "cbor", "--out", dst, shopPayload); err != nil {
		t.Fatalf("decode cbor: %v", err)
	}
	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		t.Fatalf("cbor output missing: %v", err)
	}

	if _, err := execute(t, "", "decode", "0002015904Shop6304E900"); !errors.Is(err, emvqr.ErrInvalidCRC) {
		t.Fatalf("decode bad checksum: err=%v", err)
	}
	if _, err := execute(t, "", "decode", "--view", "pretty", shopPayload); err == nil {
		t.Fatalf("expected error for unknown view")
	}
}

func TestInspectCommand(t *testing.T) {
	out, err := execute(t, "", "inspect", "0002010102XX6304FFFF")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"initiation_method", "XX", "3 records, checksum invalid"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	// Equivalent of t.Chdir (Go 1.24+) for older toolchains.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	config := "input_dir: in\noutput_dir: out\ninput_archive_dir: in_archive\noutput_archive_dir: out_archive\n" +
		"log_level: \"off\"\nstatic_fields:\n  \"58\": US\n"
	if err := os.WriteFile(defaultConfigFile, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll("in", 0o755); err != nil {
		t.Fatal(err)
	}
	records := "52,53,59,60\n5411,840,Shop,Paris\n5812,840,Cafe,Lyon\n"
	if err := os.WriteFile(filepath.Join("in", "merchants.csv"), []byte(records), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "process")
	if err != nil {
		t.Fatalf("process: %v\n%s", err, out)
	}
	if !strings.Contains(out, "merchants.csv: 2/2 encoded") {
		t.Fatalf("process output:\n%s", out)
	}

	results, _ := filepath.Glob(filepath.Join("out", "merchants_*.xlsx"))
	if len(results) != 1 {
		t.Fatalf("result files = %v", results)
	}
	if _, err := os.Stat(filepath.Join("in_archive", "merchants.csv")); err != nil {
		t.Fatalf("input not archived: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "EMV QR Payload Toolkit\nVersion:    "+Version) {
		t.Fatalf("version output = %q", out)
	}
}
