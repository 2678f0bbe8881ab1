// Package domain defines the core business entities for wordcheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Rule / RuleTable: Wording rules (incorrect form → correct form)
//   - Document: Opaque bytes plus a declared or sniffed format
//   - NormalisedText: The searchable text derived from a Document
//   - Finding: A rule confirmed present in a document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
