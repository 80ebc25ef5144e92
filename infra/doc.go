// Package infra contains the adapters behind the core interfaces: slot
// allocators, identity sources, the MQTT fallback publisher, metrics sinks,
// Sentry monitoring and the zerolog logger. Adapters depend on core
// packages, never the reverse.
package infra
