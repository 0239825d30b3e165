//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // registers the Vulkan HAL backend

	"github.com/gogpu/triangle/backend"
)

func init() {
	halAPIs[backend.BackendVulkan] = func() (instanceCreator, bool) {
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, false
		}
		return b, true
	}
	backend.Register(backend.BackendVulkan, factory(backend.BackendVulkan))
}
