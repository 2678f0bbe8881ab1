// Package html provides a Normaliser for web pages fetched by URL.
// Scripts, styles and markup are removed so only visible text is matched.
package html
