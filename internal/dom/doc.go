// Package dom defines the read boundary between the extractor and the
// environment that renders the profile page.
//
// A Source hands out point-in-time snapshots of the rendered document as
// goquery documents, reports the current location, and exposes exactly one
// mutating operation pair: Follow (trigger a same-origin navigation control)
// and Back (return to the previous position). The extractor never changes
// the document in any other way.
//
// Three implementations exist:
//   - Static (this package): an in-memory history of parsed documents whose
//     navigation is resolved by a Loader. OpenFile builds one over a saved
//     page and its sibling files.
//   - fetch.Fetcher: a Loader that retrieves pages over HTTP.
//   - browser.Page: a live Chrome tab driven through the DevTools protocol.
package dom
