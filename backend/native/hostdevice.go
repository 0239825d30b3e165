package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/triangle/gpucore"
)

// halProvider is implemented by hosts that share their HAL device, such
// as gogpu.App's GPU context provider.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// HostProvider renders with the device of a host application. Devices it
// hands out wrap the host's device; destroying them releases the objects
// the renderer created but leaves the host's device open.
type HostProvider struct {
	host   gpucontext.DeviceProvider
	device hal.Device
	queue  hal.Queue
}

// NewHostProvider adopts the device of host. host must also implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func NewHostProvider(host gpucontext.DeviceProvider) (*HostProvider, error) {
	if host == nil {
		return nil, fmt.Errorf("%w: nil provider", ErrNoHALDevice)
	}
	hp, ok := host.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALDevice)
	}
	return &HostProvider{host: host, device: device, queue: queue}, nil
}

// RequestAdapter returns an adapter standing for the host's device.
func (p *HostProvider) RequestAdapter() (gpucore.Adapter, error) {
	return &hostAdapter{provider: p}, nil
}

// PreferredFormat returns the host's surface format.
func (p *HostProvider) PreferredFormat() gputypes.TextureFormat {
	return p.host.SurfaceFormat()
}

type hostAdapter struct {
	provider *HostProvider
}

func (a *hostAdapter) Info() gpucore.AdapterInfo {
	info := a.provider.host.AdapterInfo()
	name := info.Name
	if name == "" {
		name = "host device"
	}
	return gpucore.AdapterInfo{Name: name, Backend: "host", DeviceType: deviceType(info.Type)}
}

func deviceType(t gpucontext.AdapterType) gputypes.DeviceType {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		return gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}

// RequestDevice wraps the host's device. Each wrapper has its own
// resource tables and in-flight list.
func (a *hostAdapter) RequestDevice(label string) (gpucore.Device, error) {
	p := a.provider
	return newDevice(label, p.device, p.queue, DefaultConfig().SubmitTimeout, true), nil
}
