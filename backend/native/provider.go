package native

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/triangle/backend"
	"github.com/gogpu/triangle/gpucore"
)

var (
	_ backend.Backend         = (*Provider)(nil)
	_ gpucore.AdapterProvider = (*HostProvider)(nil)
	_ gpucore.Device          = (*Device)(nil)
	_ gpucore.Queue           = (*Queue)(nil)
	_ gpucore.CommandEncoder  = (*CommandEncoder)(nil)
	_ gpucore.Surface         = (*OffscreenSurface)(nil)
)

// instanceCreator is the part of a HAL API the provider needs.
type instanceCreator interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// halAPIs maps backend names to HAL API constructors. vulkan.go adds
// Vulkan unless the nogpu build tag is set.
var halAPIs = map[string]func() (instanceCreator, bool){
	backend.BackendNoop: func() (instanceCreator, bool) { return &noop.API{}, true },
}

// Provider selects a HAL adapter and opens devices on it. It implements
// gpucore.AdapterProvider and backend.Backend.
//
// Provider is safe for concurrent use.
type Provider struct {
	mu       sync.Mutex
	cfg      Config
	instance hal.Instance
	devices  map[*Device]struct{}
	closed   bool
}

// NewProvider creates a provider. The HAL instance is created by Init or
// by the first RequestAdapter call. Zero fields of cfg take the values of
// DefaultConfig.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:     cfg.withDefaults(),
		devices: make(map[*Device]struct{}),
	}
}

// Name returns the HAL backend name.
func (p *Provider) Name() string { return p.cfg.Backend }

// Config returns the effective configuration.
func (p *Provider) Config() Config { return p.cfg }

// SetLogger forwards l to the package logger.
func (p *Provider) SetLogger(l *slog.Logger) { SetLogger(l) }

// Init creates the HAL instance. It is a no-op if the instance exists.
func (p *Provider) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initLocked()
}

func (p *Provider) initLocked() error {
	if p.closed {
		return ErrProviderClosed
	}
	if p.instance != nil {
		return nil
	}
	open, ok := halAPIs[p.cfg.Backend]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoHALBackend, p.cfg.Backend)
	}
	api, ok := open()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoHALBackend, p.cfg.Backend)
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("native: create %s instance: %w", p.cfg.Backend, err)
	}
	p.instance = instance
	slogger().Debug("native: instance created", "backend", p.cfg.Backend)
	return nil
}

// RequestAdapter returns the adapter that best matches the power
// preference. It returns a nil adapter and a nil error when the instance
// exposes no adapters at all.
func (p *Provider) RequestAdapter() (gpucore.Adapter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.initLocked(); err != nil {
		return nil, err
	}
	adapters := p.instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		slogger().Warn("native: no adapters found", "backend", p.cfg.Backend)
		return nil, nil
	}
	selected := adapters[selectAdapter(adapters, p.cfg.PowerPreference)]
	slogger().Info("native: adapter selected",
		"name", selected.Info.Name, "type", selected.Info.DeviceType, "candidates", len(adapters))
	return &Adapter{provider: p, exposed: selected}, nil
}

// selectAdapter returns the index of the best adapter for pref. Ties go to
// the earlier adapter.
func selectAdapter(adapters []hal.ExposedAdapter, pref PowerPreference) int {
	first, second := gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU
	if pref == PowerLowPower {
		first, second = second, first
	}
	rank := func(t gputypes.DeviceType) int {
		switch t {
		case first:
			return 0
		case second:
			return 1
		default:
			return 2
		}
	}
	best := 0
	for i := 1; i < len(adapters); i++ {
		if rank(adapters[i].Info.DeviceType) < rank(adapters[best].Info.DeviceType) {
			best = i
		}
	}
	return best
}

// PreferredFormat returns the configured surface format.
func (p *Provider) PreferredFormat() gputypes.TextureFormat {
	return p.cfg.PreferredFormat
}

// NewSurface creates an offscreen surface.
func (p *Provider) NewSurface(width, height uint32) (gpucore.Surface, error) {
	s, err := NewOffscreenSurface(width, height)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Provider) openDevice(label string, exposed *hal.ExposedAdapter) (*Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrProviderClosed
	}
	open, err := exposed.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("native: open device on %q: %w", exposed.Info.Name, err)
	}
	d := newDevice(label, open.Device, open.Queue, p.cfg.SubmitTimeout, false)
	d.onDestroy = p.forget
	p.devices[d] = struct{}{}
	return d, nil
}

func (p *Provider) forget(d *Device) {
	p.mu.Lock()
	delete(p.devices, d)
	p.mu.Unlock()
}

// Close destroys every device still open and then the HAL instance.
func (p *Provider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	devices := make([]*Device, 0, len(p.devices))
	for d := range p.devices {
		devices = append(devices, d)
	}
	instance := p.instance
	p.instance = nil
	p.mu.Unlock()

	for _, d := range devices {
		d.Destroy()
	}
	if instance != nil {
		instance.Destroy()
	}
	slogger().Debug("native: provider closed", "backend", p.cfg.Backend, "devices", len(devices))
}

// Adapter is a HAL adapter exposed by a Provider.
type Adapter struct {
	provider *Provider
	exposed  hal.ExposedAdapter
}

// Info describes the adapter.
func (a *Adapter) Info() gpucore.AdapterInfo {
	return gpucore.AdapterInfo{
		Name:       a.exposed.Info.Name,
		Backend:    a.provider.cfg.Backend,
		DeviceType: a.exposed.Info.DeviceType,
	}
}

// RequestDevice opens a device with default features and limits.
func (a *Adapter) RequestDevice(label string) (gpucore.Device, error) {
	d, err := a.provider.openDevice(label, &a.exposed)
	if err != nil {
		return nil, err
	}
	return d, nil
}
