package config

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/yash/laeportal/pkg/models"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "laeportal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulator.FrameInterval)
	assert.Equal(t, 20*time.Second, cfg.Simulator.CycleDuration)
	assert.InDelta(t, 0.2, cfg.Simulator.Stagger, 1e-12)
	assert.Equal(t, models.ModeUser, cfg.Mode())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
	assert.Equal(t, ProfileNormal, cfg.Runtime.Profile)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
server:
  addr: ":9090"
  request_timeout: 3s
simulator:
  frame_interval: 100ms
  stagger: 0.25
track:
  enabled: true
  path: /tmp/tracks.db
default_mode: enabler
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulator.FrameInterval)
	assert.Equal(t, 20*time.Second, cfg.Simulator.CycleDuration, "unset keys keep defaults")
	assert.InDelta(t, 0.25, cfg.Simulator.Stagger, 1e-12)
	assert.True(t, cfg.Track.Enabled)
	assert.Equal(t, 20, cfg.Track.Recorder.Every)
	assert.Equal(t, models.ModeEnabler, cfg.Mode())
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "server:\n  addr: \":9090\"\n")
	t.Setenv("LAE_SERVER__ADDR", ":7070")
	t.Setenv("LAE_LOG__LEVEL", "debug")
	t.Setenv("LAE_SIMULATOR__CYCLE_DURATION", "30s")
	t.Setenv("LAE_RUNTIME__GC_PERCENT", "80")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Simulator.CycleDuration)
	assert.Equal(t, 80, cfg.Runtime.GCPercent)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"mode":     "default_mode: admin\n",
		"frame":    "simulator:\n  frame_interval: 0s\n",
		"profile":  "runtime:\n  profile: tiny\n",
		"track":    "track:\n  enabled: true\n  path: \"\"\n",
		"addr":     "server:\n  addr: \"\"\n",
		"recorder": "track:\n  enabled: true\n  recorder:\n    every: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeFile(t, "server: [unclosed\n"))
	assert.Error(t, err)
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.DefaultMode = "enabler"
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, yamlv3.Unmarshal(data, &raw))
	assert.Equal(t, "enabler", raw["default_mode"])
	assert.Contains(t, raw, "simulator")
}

// ---------------------------------------------------------------------------
// Runtime Tests
// ---------------------------------------------------------------------------

func TestProfilePresets(t *testing.T) {
	r := RuntimeConfig{Profile: ProfileReduced}.withProfile()
	assert.Equal(t, 1, r.MaxProcs)
	assert.Equal(t, 50, r.GCPercent)
	assert.Equal(t, 512, r.MemoryLimitMB)
	assert.Equal(t, 1024, r.GraphCapacity())

	r = RuntimeConfig{Profile: ProfileAggressive, GCPercent: 30}.withProfile()
	assert.Equal(t, 30, r.GCPercent, "explicit values win")
	assert.Equal(t, 256, r.MemoryLimitMB)

	r = RuntimeConfig{}.withProfile()
	assert.Equal(t, ProfileNormal, r.Profile)
	assert.Zero(t, r.MaxProcs)
	assert.Equal(t, 4096, r.GraphCapacity())
}

func TestRuntimeValidate(t *testing.T) {
	assert.NoError(t, RuntimeConfig{}.Validate())
	assert.Error(t, RuntimeConfig{Profile: "huge"}.Validate())
	assert.Error(t, RuntimeConfig{MaxProcs: -1}.Validate())
}

func TestApply(t *testing.T) {
	prevProcs := runtime.GOMAXPROCS(0)
	prevGC := debug.SetGCPercent(100)
	prevLimit := debug.SetMemoryLimit(-1)
	t.Cleanup(func() {
		runtime.GOMAXPROCS(prevProcs)
		debug.SetGCPercent(prevGC)
		debug.SetMemoryLimit(prevLimit)
	})

	RuntimeConfig{MaxProcs: 1, GCPercent: 42, MemoryLimitMB: 64}.Apply()
	assert.Equal(t, 1, runtime.GOMAXPROCS(0))
	assert.Equal(t, 42, debug.SetGCPercent(42))
	assert.Equal(t, int64(64*1024*1024), debug.SetMemoryLimit(-1))
}
