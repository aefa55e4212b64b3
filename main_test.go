package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseOptions_DefaultsToKeyboard(t *testing.T) {
	opts, err := parseOptions(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.mode != modeKeyboard {
		t.Fatalf("expected keyboard mode, got %d", opts.mode)
	}
}

func TestParseOptions_Burst(t *testing.T) {
	opts, err := parseOptions([]string{"-burst", "-config", "k.yaml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.mode != modeBurst || opts.configPath != "k.yaml" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestParseOptions_Render(t *testing.T) {
	opts, err := parseOptions([]string{"-render", "out.wav", "-script", "perf.lua"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.mode != modeRender || opts.renderPath != "out.wav" || opts.scriptPath != "perf.lua" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestParseOptions_Rejects(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"-burst", "-render", "a.wav", "-script", "b.lua"}, "at most one mode"},
		{[]string{"-render", "a.wav"}, "requires -script"},
		{[]string{"-script", "b.lua"}, "requires -render"},
		{[]string{"stray"}, "unexpected argument"},
		{[]string{"-nope"}, "not defined"},
	}
	for _, c := range cases {
		_, err := parseOptions(c.args)
		if err == nil || !strings.Contains(err.Error(), c.want) {
			t.Fatalf("%v: expected error containing %q, got %v", c.args, c.want, err)
		}
	}
}

func TestParseOptions_Help(t *testing.T) {
	stdout := os.Stdout
	devnull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open devnull: %v", err)
	}
	defer devnull.Close()
	os.Stdout = devnull
	defer func() { os.Stdout = stdout }()

	if _, err := parseOptions([]string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}

func TestRun_RenderMode(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "perf.lua")
	out := filepath.Join(dir, "perf.wav")
	if err := os.WriteFile(script, []byte("note(30, 20)\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	opts := options{mode: modeRender, renderPath: out, scriptPath: script}
	if err := run(context.Background(), opts, DefaultConfig(), newTestLogger()); err != nil {
		t.Fatalf("render run failed: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() <= 44 {
		t.Fatalf("expected audio data after the header, file is %d bytes", info.Size())
	}
}

func TestBoilerPlateAndFeatures(t *testing.T) {
	var buf bytes.Buffer
	boilerPlate(&buf)
	if !strings.Contains(buf.String(), Version) {
		t.Fatalf("banner missing version: %q", buf.String())
	}

	buf.Reset()
	printFeatures(&buf)
	if !strings.Contains(buf.String(), "Compiled features:") {
		t.Fatalf("unexpected features output: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "audio:") {
		t.Fatalf("expected an audio backend feature, got %q", buf.String())
	}
}

func TestRun_OutputFailureIsFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Format = "pcm24"

	for _, mode := range []runMode{modeBurst, modeKeyboard} {
		done := make(chan error, 1)
		go func() { done <- run(context.Background(), options{mode: mode}, cfg, newTestLogger()) }()

		select {
		case err := <-done:
			if err == nil || !strings.Contains(err.Error(), "failed to initialize sound") {
				t.Fatalf("mode %d: expected sound init error, got %v", mode, err)
			}
			if !strings.Contains(err.Error(), "pcm24") {
				t.Fatalf("mode %d: error lost its cause: %v", mode, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("mode %d: run did not return after output failure", mode)
		}
	}
}
