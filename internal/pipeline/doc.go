// Package pipeline assembles a profile record by running extraction steps
// in sequence over one snapshot of a document.
//
// Each step reads the shared Pass (snapshot, resolved sections, scalar
// values extracted so far) and fills part of the record. Field steps never
// fail: a field that cannot be found stays empty. Only the snapshot step can
// fail, when the document cannot be read at all, and Extractor reports that
// as ErrSourceUnavailable. Cancellation of the caller's context is reported
// as the context error itself.
//
// The steps run in a fixed order because the role fallback reads the
// headline, and the recent posts step navigates away from the profile and
// therefore runs last, after every other step has used the snapshot.
//
// BatchProcessor runs independent passes concurrently, one per document,
// with errgroup limiting the number of passes in flight.
package pipeline
