package allocator

import (
	"github.com/kilianp07/slotgate/core/admission"
)

func init() {
	_ = admission.RegisterAllocator("rpc", func(conf map[string]any) (admission.Allocator, error) {
		return newRPCFromConf(conf)
	})
	_ = admission.RegisterAllocator("sql", func(conf map[string]any) (admission.Allocator, error) {
		return newSQLFromConf(conf)
	})
}
