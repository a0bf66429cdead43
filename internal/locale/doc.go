// Package locale holds the replaceable vocabulary that ties the extractor to
// one document family: section aliases, list skip patterns, headline
// separators and connection keywords.
//
// A default table is embedded in the binary. A YAML file with the same
// layout can override any subset of it, so surface-text changes in the
// target pages do not require code changes.
package locale
