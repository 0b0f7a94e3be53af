package main

import (
	"path/filepath"
	"testing"

	"github.com/iwvelando/negotiation-envelope/internal/config"
	"github.com/iwvelando/negotiation-envelope/internal/server"
)

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		logging  config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "Defaults", logging: config.LoggingConfig{}},
		{name: "Console debug", logging: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "Override level", logging: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "Invalid level", logging: config.LoggingConfig{Level: "verbose"}, wantErr: true},
		{name: "Invalid format", logging: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.logging, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "envelope.log")
	logger, err := initializeLogger(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	logger.Info("written to file")
	_ = logger.Sync()
}

func TestApplyUploadOverride(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{name: "Empty keeps config", value: "", want: 2 * 1024 * 1024},
		{name: "Whitespace keeps config", value: "  ", want: 2 * 1024 * 1024},
		{name: "Kilobytes", value: "512K", want: 512 * 1024},
		{name: "Plain bytes", value: "4096", want: 4096},
		{name: "Zero", value: "0", wantErr: true},
		{name: "Bad unit", value: "5X", wantErr: true},
		{name: "Not a size", value: "large", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &server.Config{}
			cfg.SetUploadSizeBytes(2 * 1024 * 1024)

			err := applyUploadOverride(cfg, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				if cfg.UploadSizeBytes() != 2*1024*1024 {
					t.Fatalf("config changed on error: %d", cfg.UploadSizeBytes())
				}
				return
			}
			if err != nil {
				t.Fatalf("applyUploadOverride() error = %v", err)
			}
			if got := cfg.HandlerOptions("test").MaxUploadSize; got != tt.want {
				t.Fatalf("MaxUploadSize = %d, want %d", got, tt.want)
			}
		})
	}
}
