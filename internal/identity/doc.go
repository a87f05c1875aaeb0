// Package identity canonicalizes identifier values and derives patient keys.
//
// Normalized values exist only for comparison: they are lower-cased, stripped
// of diacritics and whitespace noise, and restricted to a per-kind alphabet.
// DerivePatientKey collapses a normalized identifier bundle into an opaque
// digest with a fixed evidence precedence (patient id, then name plus date of
// birth, then name alone). Bundles without any evidence get a key that is
// unique per call so unrelated unknowns never coalesce.
//
// NormalizeDateLike does not parse dates. "1980-01-02" and "02/01/1980" stay
// distinct; callers must not treat differing normalizations as a mismatch
// signal on their own.
package identity
