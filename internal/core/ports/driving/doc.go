// Package driving defines the primary ports: the operations the transport
// adapters (HTTP API, CLI, Telegram bot) invoke on the core services.
package driving
