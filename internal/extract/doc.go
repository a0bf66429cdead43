// Package extract turns a document snapshot and its resolved sections into
// field values.
//
// Scalar fields are read by a Chain: an ordered list of declarative
// Strategy descriptors tried until one yields non-empty text, followed by
// an optional fallback that derives the value from other fields or from the
// document text. List-shaped fields are read by ItemSpec (multi-part items
// such as experience entries) and ListSpec (flat, deduplicated lists such as
// skills). The selectors for the supported profile layouts live in
// profile.go as data, so a layout change is a catalog edit.
//
// Nothing in this package returns an error. A field that cannot be found is
// empty.
package extract
