// Package normalisers groups the Normaliser implementations, one package
// per document format: csv, excel, docx, pdf, html and plaintext.
//
// Each normaliser turns raw bytes into domain.NormalisedText. The
// NormaliserRegistry picks one by filename extension or MIME type and
// otherwise tries them in descending priority. Use All to register the
// full set.
package normalisers
