package admission

import (
	"context"

	"github.com/kilianp07/slotgate/core/factory"
	"github.com/kilianp07/slotgate/core/model"
)

// Allocator is the remote slot allocator. Each call is a fresh admission
// attempt; it reports whether a slot was granted for req.ServerURL.
type Allocator interface {
	AcquireSlot(ctx context.Context, req model.SlotRequest) (bool, error)
}

// AllocatorFunc adapts a function to Allocator.
type AllocatorFunc func(ctx context.Context, req model.SlotRequest) (bool, error)

func (f AllocatorFunc) AcquireSlot(ctx context.Context, req model.SlotRequest) (bool, error) {
	return f(ctx, req)
}

var allocatorRegistry = factory.NewRegistry[Allocator]()

// RegisterAllocator adds an allocator factory identified by name.
func RegisterAllocator(name string, f factory.Factory[Allocator]) error {
	return allocatorRegistry.Register(name, f)
}

// NewAllocator builds the allocator described by cfg.
func NewAllocator(cfg factory.ModuleConfig) (Allocator, error) {
	return allocatorRegistry.Create(cfg)
}

// AllocatorTypes lists the registered allocator names.
func AllocatorTypes() []string { return allocatorRegistry.Types() }
