package config

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Runtime profiles, from roomiest to tightest.
const (
	ProfileNormal     = "normal"
	ProfileReduced    = "reduced"
	ProfileAggressive = "aggressive"
)

// RuntimeConfig tunes the Go runtime for the host. Zero fields leave the
// runtime default in place unless a profile fills them.
type RuntimeConfig struct {
	Profile       string `koanf:"profile" yaml:"profile"`
	MaxProcs      int    `koanf:"max_procs" yaml:"max_procs"`
	GCPercent     int    `koanf:"gc_percent" yaml:"gc_percent"`
	MemoryLimitMB int    `koanf:"memory_limit_mb" yaml:"memory_limit_mb"`
}

// preset returns the profile's settings.
//
//	normal      runtime defaults, 4096-node graph slab
//	reduced     512MB limit, GC 50, one proc
//	aggressive  256MB limit, GC 20, one proc
func preset(profile string) (RuntimeConfig, int) {
	switch profile {
	case ProfileReduced:
		return RuntimeConfig{Profile: profile, MaxProcs: 1, GCPercent: 50, MemoryLimitMB: 512}, 1024
	case ProfileAggressive:
		return RuntimeConfig{Profile: profile, MaxProcs: 1, GCPercent: 20, MemoryLimitMB: 256}, 512
	default:
		return RuntimeConfig{Profile: ProfileNormal}, 4096
	}
}

// withProfile fills unset fields from the profile preset. Explicit values win.
func (r RuntimeConfig) withProfile() RuntimeConfig {
	p, _ := preset(r.Profile)
	if r.Profile == "" {
		r.Profile = ProfileNormal
	}
	if r.MaxProcs == 0 {
		r.MaxProcs = p.MaxProcs
	}
	if r.GCPercent == 0 {
		r.GCPercent = p.GCPercent
	}
	if r.MemoryLimitMB == 0 {
		r.MemoryLimitMB = p.MemoryLimitMB
	}
	return r
}

// Validate rejects unknown profiles and negative limits.
func (r RuntimeConfig) Validate() error {
	switch r.Profile {
	case "", ProfileNormal, ProfileReduced, ProfileAggressive:
	default:
		return fmt.Errorf("runtime.profile %q: must be one of normal, reduced, aggressive", r.Profile)
	}
	if r.MaxProcs < 0 || r.GCPercent < 0 || r.MemoryLimitMB < 0 {
		return fmt.Errorf("runtime limits must be non-negative")
	}
	return nil
}

// GraphCapacity is the initial node slab size for the network graph.
func (r RuntimeConfig) GraphCapacity() int {
	_, n := preset(r.Profile)
	return n
}

// Apply pushes the settings into the runtime.
func (r RuntimeConfig) Apply() {
	if r.MaxProcs > 0 {
		runtime.GOMAXPROCS(r.MaxProcs)
	}
	if r.GCPercent > 0 {
		debug.SetGCPercent(r.GCPercent)
	}
	if r.MemoryLimitMB > 0 {
		debug.SetMemoryLimit(int64(r.MemoryLimitMB) * 1024 * 1024)
	}
}
