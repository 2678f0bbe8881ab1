package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document format or normaliser.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnreadableDocument indicates no parser could extract content.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrRuleLoad indicates the rule source is malformed.
	ErrRuleLoad = errors.New("rule table could not be loaded")

	// ErrMissingColumn indicates a required rule column is absent.
	ErrMissingColumn = errors.New("required column missing")

	// ErrNoDocumentLoaded indicates a match was attempted with no
	// normalised text available. This is distinct from "ran and found nothing".
	ErrNoDocumentLoaded = errors.New("no document loaded")

	// ErrNoRulesLoaded indicates a match was attempted before any rule
	// table was loaded into the session.
	ErrNoRulesLoaded = errors.New("no rule table loaded")

	// ErrPersistence indicates saving or restoring a rule snapshot failed.
	ErrPersistence = errors.New("persistence failed")

	// ErrSessionNotFound indicates the session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
)

// UnreadableDocumentError is returned when every parser attempt failed or
// produced empty content.
type UnreadableDocumentError struct {
	// Name is the filename or URI of the document, if known.
	Name string

	// Attempts lists every parser that was tried, in order.
	Attempts []ParseAttempt
}

func (e *UnreadableDocumentError) Error() string {
	var b strings.Builder
	b.WriteString("unreadable document")
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if len(e.Attempts) > 0 {
		b.WriteString(" (tried ")
		for i, a := range e.Attempts {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is ErrUnreadableDocument.
func (e *UnreadableDocumentError) Is(target error) bool {
	return target == ErrUnreadableDocument
}

// MissingColumnError names the required rule column that was not found
// in the header row.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q missing", e.Column)
}

// Is reports whether target is ErrMissingColumn.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// RuleLoadError wraps any failure to parse a rule source.
type RuleLoadError struct {
	// Source is the filename or identifier of the rule source.
	Source string
	Err    error
}

func (e *RuleLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("loading rules: %v", e.Err)
	}
	return fmt.Sprintf("loading rules from %q: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RuleLoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRuleLoad.
func (e *RuleLoadError) Is(target error) bool {
	return target == ErrRuleLoad
}

// PersistenceError wraps a failed snapshot operation.
type PersistenceError struct {
	// Op is the operation that failed ("save", "load", "delete").
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("rule snapshot %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
