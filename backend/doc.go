// Package backend is the registry of GPU implementations the triangle can
// render with.
//
// Implementations register a [Factory] under a name from an init function.
// The gogpu/wgpu HAL implementation registers "vulkan" and "noop":
//
//	import _ "github.com/gogpu/triangle/backend/native"
//
// # Backend Selection
//
// Use [InitDefault] to get the best backend that initializes on this host,
// or [Get] to request one by name:
//
//	b, err := backend.InitDefault()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	surface, _ := b.NewSurface(640, 480)
//	r, err := triangle.RenderFrame(b, surface)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// Priority order is vulkan, then noop. The noop backend executes nothing
// and exists for headless tests.
package backend
