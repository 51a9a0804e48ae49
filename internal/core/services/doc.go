// Package services implements the core business logic: document sync with
// content-hash change detection, background polling, registration, tenant
// onboarding, and push ingestion. Services depend only on the port
// interfaces and are wired with concrete adapters at startup.
package services
