package native

import (
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/backend"
)

// PowerPreference orders adapters by device type during selection.
type PowerPreference uint8

const (
	// PowerHighPerformance prefers discrete GPUs, then integrated ones.
	PowerHighPerformance PowerPreference = iota

	// PowerLowPower prefers integrated GPUs, then discrete ones.
	PowerLowPower
)

// String returns the preference name.
func (p PowerPreference) String() string {
	switch p {
	case PowerHighPerformance:
		return "high-performance"
	case PowerLowPower:
		return "low-power"
	default:
		return "unknown"
	}
}

// Config configures a Provider.
type Config struct {
	// Backend selects the HAL API: backend.BackendVulkan or
	// backend.BackendNoop.
	Backend string

	// PowerPreference decides between discrete and integrated adapters.
	PowerPreference PowerPreference

	// PreferredFormat is the surface format reported to renderers.
	PreferredFormat gputypes.TextureFormat

	// SubmitTimeout bounds completion waits during readback and WaitIdle.
	SubmitTimeout time.Duration
}

// DefaultConfig returns a Vulkan configuration rendering to BGRA8Unorm.
func DefaultConfig() Config {
	return Config{
		Backend:         backend.BackendVulkan,
		PowerPreference: PowerHighPerformance,
		PreferredFormat: gputypes.TextureFormatBGRA8Unorm,
		SubmitTimeout:   5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.PreferredFormat == gputypes.TextureFormatUndefined {
		c.PreferredFormat = d.PreferredFormat
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = d.SubmitTimeout
	}
	return c
}
