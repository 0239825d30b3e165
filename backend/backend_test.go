package backend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/triangle/gpucore"
)

type fakeBackend struct {
	name    string
	initErr error
	inited  bool
	closed  bool
}

func (b *fakeBackend) Name() string                                    { return b.name }
func (b *fakeBackend) RequestAdapter() (gpucore.Adapter, error)        { return nil, nil }
func (b *fakeBackend) PreferredFormat() gputypes.TextureFormat         { return gputypes.TextureFormatRGBA8Unorm }
func (b *fakeBackend) NewSurface(w, h uint32) (gpucore.Surface, error) { return nil, nil }
func (b *fakeBackend) Close()                                          { b.closed = true }

func (b *fakeBackend) Init() error {
	if b.initErr != nil {
		return b.initErr
	}
	b.inited = true
	return nil
}

// withRegistry runs the test against an empty registry.
func withRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = make(map[string]Factory)
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func TestRegisterGet(t *testing.T) {
	withRegistry(t)

	if Get("fake") != nil {
		t.Fatal("Get on empty registry returned a backend")
	}
	Register("fake", func() Backend { return &fakeBackend{name: "fake"} })
	if !IsRegistered("fake") {
		t.Error("IsRegistered(fake) = false")
	}
	b := Get("fake")
	if b == nil || b.Name() != "fake" {
		t.Fatalf("Get(fake) = %v", b)
	}
	if Get("fake") == b {
		t.Error("Get returned the same instance twice")
	}

	Unregister("fake")
	if IsRegistered("fake") {
		t.Error("still registered after Unregister")
	}
}

func TestAvailableOrder(t *testing.T) {
	withRegistry(t)
	for _, name := range []string{"zeta", BackendNoop, "alpha", BackendVulkan} {
		n := name
		Register(n, func() Backend { return &fakeBackend{name: n} })
	}
	want := []string{BackendVulkan, BackendNoop, "alpha", "zeta"}
	if got := Available(); !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
	if d := Default(); d == nil || d.Name() != BackendVulkan {
		t.Errorf("Default() = %v, want vulkan", d)
	}
}

func TestInitDefaultFallsBack(t *testing.T) {
	withRegistry(t)
	vk := &fakeBackend{name: BackendVulkan, initErr: errors.New("no ICD")}
	noop := &fakeBackend{name: BackendNoop}
	Register(BackendVulkan, func() Backend { return vk })
	Register(BackendNoop, func() Backend { return noop })

	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault: %v", err)
	}
	if b != noop || !noop.inited {
		t.Errorf("InitDefault() = %v, want initialized noop", b)
	}
	if !vk.closed {
		t.Error("failed backend was not closed")
	}
}

func TestInitDefaultNone(t *testing.T) {
	withRegistry(t)
	if _, err := InitDefault(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("err = %v, want ErrBackendNotAvailable", err)
	}

	cause := errors.New("no ICD")
	Register(BackendVulkan, func() Backend { return &fakeBackend{name: BackendVulkan, initErr: cause} })
	_, err := InitDefault()
	if !errors.Is(err, ErrBackendNotAvailable) || !errors.Is(err, cause) {
		t.Errorf("err = %v, want ErrBackendNotAvailable wrapping cause", err)
	}
}

func TestInitUnknown(t *testing.T) {
	withRegistry(t)
	if _, err := Init("metal"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("err = %v", err)
	}
}
