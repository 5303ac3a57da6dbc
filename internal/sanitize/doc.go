// Package sanitize is the parse/validate boundary between raw artifact
// text and typed price records.
//
// Every row of every input file passes through here exactly once.
// Rejections are values, not errors of the pipeline: a rejected row is
// counted and dropped, and the rest of the file proceeds.
package sanitize
