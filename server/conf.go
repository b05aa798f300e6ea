package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"github.com/briarrock/terrain/server/world"
)

// Config holds the fully resolved settings needed to build a World and
// its driving harness. It is produced from a UserConfig (see
// UserConfig.Config) or constructed directly by embedders that don't need
// file-backed configuration at all.
type Config struct {
	// Log is the Logger used throughout the world and timing packages. If
	// nil, Log is set to slog.Default().
	Log *slog.Logger

	// ChunkRadius is the radius, in chunks, of the loaded disk around the
	// viewer. Zero selects world.ChunkRadius.
	ChunkRadius int32
	// FrontierRadius is the base radius, in chunks, the outermost frontier
	// level should roughly reach. Zero selects world.FrontierRadius.
	FrontierRadius int32
	// FrontierLevels is the number of concentric LOD circles in the
	// frontier pyramid. Zero selects world.FrontierLevels.
	FrontierLevels int

	// ChunksToLoadPerFrame, ChunksToMeshPerFrame and LODChunksToMeshPerFrame
	// bound the per-frame admission/meshing budgets. Zero selects the
	// package defaults from world/const.go.
	ChunksToLoadPerFrame    int
	ChunksToMeshPerFrame    int
	LODChunksToMeshPerFrame int

	// Bedrock is the block identifier reported below y=0. It is the
	// caller's responsibility to have registered it with the Registry
	// passed to World.New.
	Bedrock world.BlockID
}

// WorldConfig converts Config plus the caller-supplied registry, mesher
// and loader into a world.Config ready for world.New.
func (conf Config) WorldConfig(reg *world.Registry, mesher world.Mesher, loader world.Loader) world.Config {
	return world.Config{
		Registry:                reg,
		Mesher:                  mesher,
		Loader:                  loader,
		Bedrock:                 conf.Bedrock,
		ChunkRadius:             conf.ChunkRadius,
		FrontierRadius:          conf.FrontierRadius,
		FrontierLevels:          conf.FrontierLevels,
		ChunksToLoadPerFrame:    conf.ChunksToLoadPerFrame,
		ChunksToMeshPerFrame:    conf.ChunksToMeshPerFrame,
		LODChunksToMeshPerFrame: conf.LODChunksToMeshPerFrame,
		Log:                     conf.Log,
	}
}

// UserConfig is the TOML-serialisable on-disk form of Config. It is
// intended to be loaded once at startup via ReadConfig and converted with
// UserConfig.Config.
type UserConfig struct {
	Log struct {
		// Level is one of "debug", "info", "warn" or "error".
		Level string
	}
	World struct {
		// ChunkRadius is the radius, in chunks, of the loaded disk.
		ChunkRadius int32
		// FrontierRadius is the base radius, in chunks, of the outermost
		// frontier level.
		FrontierRadius int32
		// FrontierLevels is the number of concentric LOD circles.
		FrontierLevels int
		// ChunksToLoadPerFrame bounds new-chunk admission per Recenter call.
		ChunksToLoadPerFrame int
		// ChunksToMeshPerFrame bounds remeshes past the 3x3 core per Remesh
		// call.
		ChunksToMeshPerFrame int
		// LODChunksToMeshPerFrame bounds frontier tile builds per level per
		// Remesh call.
		LODChunksToMeshPerFrame int
	}
}

// DefaultConfig returns a UserConfig with every field filled out to the
// package defaults in server/world/const.go.
func DefaultConfig() UserConfig {
	var c UserConfig
	c.Log.Level = "info"
	c.World.ChunkRadius = world.ChunkRadius
	c.World.FrontierRadius = world.FrontierRadius
	c.World.FrontierLevels = world.FrontierLevels
	c.World.ChunksToLoadPerFrame = world.NumChunksToLoadPerFrame
	c.World.ChunksToMeshPerFrame = world.NumChunksToMeshPerFrame
	c.World.LODChunksToMeshPerFrame = world.NumLODChunksToMeshPerFrame
	return c
}

// Config converts a UserConfig into a Config, building the configured
// slog.Logger along the way.
func (uc UserConfig) Config() (Config, error) {
	level, err := parseLevel(uc.Log.Level)
	if err != nil {
		return Config{}, fmt.Errorf("parse log level: %w", err)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return Config{
		Log:                     log,
		ChunkRadius:             uc.World.ChunkRadius,
		FrontierRadius:          uc.World.FrontierRadius,
		FrontierLevels:          uc.World.FrontierLevels,
		ChunksToLoadPerFrame:    uc.World.ChunksToLoadPerFrame,
		ChunksToMeshPerFrame:    uc.World.ChunksToMeshPerFrame,
		LODChunksToMeshPerFrame: uc.World.LODChunksToMeshPerFrame,
	}, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ReadConfig reads the UserConfig stored in the TOML file at path. If the
// file does not exist, it is created from DefaultConfig() so that
// subsequent runs (and manual edits) have something to start from.
func ReadConfig(path string) (UserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c := DefaultConfig()
			return c, writeConfig(path, c)
		}
		return UserConfig{}, fmt.Errorf("read config: %w", err)
	}
	c := DefaultConfig()
	if err := toml.Unmarshal(data, &c); err != nil {
		return UserConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func writeConfig(path string, c UserConfig) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	encoded, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
