// Package factory provides the generic registry used to build allocators and
// metrics sinks from configuration. A module is named by a type string and
// configured with a map of raw settings which the factory decodes into its
// own struct.
//
//	reg := factory.NewRegistry[admission.Allocator]()
//	reg.Register("rpc", func(conf map[string]any) (admission.Allocator, error) {
//	    var c allocator.RPCConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return allocator.NewRPCAllocator(c)
//	})
package factory
