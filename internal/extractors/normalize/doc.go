// Package normalize holds the stateless field helpers shared by every
// extraction strategy: price parsing, currency inference, rating coercion,
// provenance construction and lookups over decoded JSON records.
//
// None of these helpers return errors. Unparseable input degrades to a
// zero value so that a single odd field never drops a whole record.
package normalize
