// Package driven defines the secondary ports: interfaces the core services
// call out through. Adapters (storage, connectors, the memory backend
// client, the credential cipher) implement these.
package driven
