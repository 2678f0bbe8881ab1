// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser: Extracts text from one document format
//   - NormaliserRegistry: Resolves the format and runs the parser attempts
//   - TableReader: Reads a tabular rule source into rows
//   - RuleSnapshotStore: Rule table persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentFetcher: Remote document retrieval. Without it, URL sources are rejected.
//   - FileWatcher: Change notification for `check --watch`.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
