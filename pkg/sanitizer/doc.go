// Package sanitizer normalizes user input before validation and storage.
//
// Every function is idempotent and tolerant: bad input yields an empty
// string or is passed through trimmed, never an error. Validation is the
// caller's job.
package sanitizer
