// Package admission implements the slot admission gate.
//
// Generation-class operations must hold a time-boxed slot from a shared
// remote allocator before calling their server. The Gate polls the
// allocator: a grant returns immediately, a busy answer is retried after a
// fixed delay, and an allocator error aborts admission. The allocator owns
// all capacity accounting; this package is only a polling client.
package admission
