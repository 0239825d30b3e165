// Package native implements the gpucore interfaces on top of the
// gogpu/wgpu hardware abstraction layer.
//
// A Provider opens a HAL instance (Vulkan, or the noop API for tests and
// headless runs), selects an adapter and hands out Devices. Devices keep
// every HAL object they create in ID tables, so callers only ever see
// gpucore IDs. Command buffers are tracked by submission index and freed
// once the queue reports that index completed.
//
// OffscreenSurface renders into a device-owned texture and can copy the
// last frame back to an *image.RGBA:
//
//	p := native.NewProvider(native.DefaultConfig())
//	defer p.Close()
//	s, _ := native.NewOffscreenSurface(640, 480)
//	r, err := triangle.RenderFrame(p, s)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//	img, err := s.Readback()
//
// HostProvider adopts the device of a host application, such as a gogpu
// window, through gpucontext.DeviceProvider. The host keeps ownership of
// the device.
package native
