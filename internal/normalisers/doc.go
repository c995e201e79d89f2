// Package normalisers provides the page extractors that turn raw client
// documents into page text. Each extractor knows how to read a specific
// document format.
//
// Extractors are registered with the Registry at startup.
package normalisers
