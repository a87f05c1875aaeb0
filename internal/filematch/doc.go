// Package filematch decides whether a filename plausibly refers to a patient.
//
// Tokenization lower-cases, strips diacritics, and splits on any run of
// non-alphanumeric characters. Identifier checks are boundary-safe so a short
// id such as "123" never matches inside "1234". Name checks distrust short
// tokens and common name particles, and require first and last name together
// whenever a reliable last name exists.
package filematch
