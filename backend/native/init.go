package native

import "github.com/gogpu/triangle/backend"

func init() {
	backend.Register(backend.BackendNoop, factory(backend.BackendNoop))
}

func factory(name string) backend.Factory {
	return func() backend.Backend {
		cfg := DefaultConfig()
		cfg.Backend = name
		return NewProvider(cfg)
	}
}
