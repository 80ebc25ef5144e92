// Package allocator provides slot allocator adapters for the admission
// gate: a PostgREST-style RPC client and a direct SQL function call.
//
// Both are registered with core/admission under the types "rpc" and "sql"
// and are selected through the allocator section of the configuration.
package allocator
