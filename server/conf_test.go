package server

import (
	"path/filepath"
	"testing"
)

func TestReadConfigCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	uc, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if uc.World.ChunkRadius == 0 {
		t.Fatal("expected default chunk radius to be set")
	}

	again, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig (second read): %v", err)
	}
	if again.World.ChunkRadius != uc.World.ChunkRadius {
		t.Fatalf("round-tripped chunk radius = %d, want %d", again.World.ChunkRadius, uc.World.ChunkRadius)
	}
}

func TestUserConfigConfigRejectsUnknownLevel(t *testing.T) {
	uc := DefaultConfig()
	uc.Log.Level = "very loud"
	if _, err := uc.Config(); err == nil {
		t.Fatal("expected an error for an unknown log level")
	}
}

func TestUserConfigConfigBuildsLogger(t *testing.T) {
	uc := DefaultConfig()
	conf, err := uc.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if conf.Log == nil {
		t.Fatal("expected a non-nil logger")
	}
	if conf.ChunkRadius != uc.World.ChunkRadius {
		t.Fatalf("ChunkRadius = %d, want %d", conf.ChunkRadius, uc.World.ChunkRadius)
	}
}
