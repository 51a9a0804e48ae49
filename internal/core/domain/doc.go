// Package domain contains the core business entities and rules for the
// onboarding-context aggregator: monitored documents, tenants, chat logs,
// push events, and the pure functions (fingerprinting, path filtering)
// that drive change detection and ingestion decisions.
//
// This package has no dependencies on adapters or external services.
package domain
