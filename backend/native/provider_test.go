package native

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/triangle/backend"
)

func newNoopProvider(t *testing.T) *Provider {
	t.Helper()
	p := NewProvider(Config{Backend: backend.BackendNoop})
	t.Cleanup(p.Close)
	return p
}

// newTestDevice opens a device on the noop HAL.
func newTestDevice(t *testing.T) *Device {
	t.Helper()
	p := newNoopProvider(t)
	adapter, err := p.RequestAdapter()
	if err != nil {
		t.Fatalf("RequestAdapter: %v", err)
	}
	if adapter == nil {
		t.Fatal("RequestAdapter returned no adapter")
	}
	dev, err := adapter.RequestDevice("test")
	if err != nil {
		t.Fatalf("RequestDevice: %v", err)
	}
	return dev.(*Device)
}

func TestProviderDefaults(t *testing.T) {
	p := NewProvider(Config{})
	cfg := p.Config()
	if cfg.Backend != backend.BackendVulkan {
		t.Errorf("Backend = %q, want %q", cfg.Backend, backend.BackendVulkan)
	}
	if cfg.PreferredFormat != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("PreferredFormat = %v, want BGRA8Unorm", cfg.PreferredFormat)
	}
	if cfg.SubmitTimeout <= 0 {
		t.Errorf("SubmitTimeout = %v, want > 0", cfg.SubmitTimeout)
	}
	if p.PreferredFormat() != cfg.PreferredFormat {
		t.Errorf("PreferredFormat() = %v, want %v", p.PreferredFormat(), cfg.PreferredFormat)
	}
}

func TestProviderRequestAdapter(t *testing.T) {
	p := newNoopProvider(t)
	if err := p.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Init(); err != nil {
		t.Fatalf("second Init: %v", err)
	}

	adapter, err := p.RequestAdapter()
	if err != nil {
		t.Fatalf("RequestAdapter: %v", err)
	}
	if adapter == nil {
		t.Fatal("expected an adapter from the noop backend")
	}
	if got := adapter.Info().Backend; got != backend.BackendNoop {
		t.Errorf("Info().Backend = %q, want %q", got, backend.BackendNoop)
	}
	if p.Name() != backend.BackendNoop {
		t.Errorf("Name() = %q, want %q", p.Name(), backend.BackendNoop)
	}
}

func TestProviderUnknownBackend(t *testing.T) {
	p := NewProvider(Config{Backend: "metal"})
	defer p.Close()

	if err := p.Init(); !errors.Is(err, ErrNoHALBackend) {
		t.Errorf("Init() = %v, want ErrNoHALBackend", err)
	}
	if _, err := p.RequestAdapter(); !errors.Is(err, ErrNoHALBackend) {
		t.Errorf("RequestAdapter() = %v, want ErrNoHALBackend", err)
	}
}

func TestProviderClose(t *testing.T) {
	p := NewProvider(Config{Backend: backend.BackendNoop})
	adapter, err := p.RequestAdapter()
	if err != nil || adapter == nil {
		t.Fatalf("RequestAdapter: %v, %v", adapter, err)
	}
	dev, err := adapter.RequestDevice("close")
	if err != nil {
		t.Fatalf("RequestDevice: %v", err)
	}

	p.Close()
	p.Close()

	if !dev.(*Device).isDestroyed() {
		t.Error("Close did not destroy the open device")
	}
	if _, err := p.RequestAdapter(); !errors.Is(err, ErrProviderClosed) {
		t.Errorf("RequestAdapter after Close = %v, want ErrProviderClosed", err)
	}
	if _, err := adapter.RequestDevice("late"); !errors.Is(err, ErrProviderClosed) {
		t.Errorf("RequestDevice after Close = %v, want ErrProviderClosed", err)
	}
}

func TestProviderForgetsDestroyedDevice(t *testing.T) {
	p := newNoopProvider(t)
	adapter, _ := p.RequestAdapter()
	dev, err := adapter.RequestDevice("forget")
	if err != nil {
		t.Fatalf("RequestDevice: %v", err)
	}
	dev.Destroy()

	p.mu.Lock()
	n := len(p.devices)
	p.mu.Unlock()
	if n != 0 {
		t.Errorf("provider tracks %d devices after Destroy, want 0", n)
	}
}

func TestSelectAdapter(t *testing.T) {
	mk := func(types ...gputypes.DeviceType) []hal.ExposedAdapter {
		out := make([]hal.ExposedAdapter, len(types))
		for i, dt := range types {
			out[i].Info.DeviceType = dt
		}
		return out
	}
	discrete, integrated := gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU

	tests := []struct {
		name     string
		adapters []hal.ExposedAdapter
		pref     PowerPreference
		want     int
	}{
		{"single", mk(integrated), PowerHighPerformance, 0},
		{"discrete first", mk(integrated, discrete), PowerHighPerformance, 1},
		{"integrated first", mk(discrete, integrated), PowerLowPower, 1},
		{"tie keeps order", mk(discrete, discrete), PowerHighPerformance, 0},
		{"low power falls back", mk(discrete, discrete), PowerLowPower, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selectAdapter(tt.adapters, tt.pref); got != tt.want {
				t.Errorf("selectAdapter() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPowerPreferenceString(t *testing.T) {
	if PowerHighPerformance.String() != "high-performance" || PowerLowPower.String() != "low-power" {
		t.Errorf("unexpected names %q, %q", PowerHighPerformance, PowerLowPower)
	}
	if PowerPreference(9).String() != "unknown" {
		t.Errorf("PowerPreference(9) = %q", PowerPreference(9))
	}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendNoop) {
		t.Fatal("noop backend not registered")
	}
	b, err := backend.Init(backend.BackendNoop)
	if err != nil {
		t.Fatalf("backend.Init(noop): %v", err)
	}
	defer b.Close()
	if _, ok := b.(*Provider); !ok {
		t.Errorf("backend.Init(noop) = %T, want *Provider", b)
	}
}

func TestProviderSetLogger(t *testing.T) {
	p := NewProvider(Config{Backend: backend.BackendNoop})
	defer p.Close()

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	p.SetLogger(l)
	defer SetLogger(nil)
	if slogger() != l {
		t.Error("SetLogger did not replace the package logger")
	}

	p.SetLogger(nil)
	if slogger().Enabled(context.Background(), slog.LevelError) {
		t.Error("nil logger should restore the silent handler")
	}
}
