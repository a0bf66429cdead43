// Package section locates the subtree of a profile document that holds one
// canonical section (experience, education, skills, ...).
//
// Resolution tries three signals in order and stops at the first hit:
//
//  1. Identifier: an element whose id equals the canonical key. The nearest
//     enclosing <section> of that element (or of its parent) is returned.
//  2. Alias: any <section> that contains an element whose id matches one of
//     the localized aliases of the key.
//  3. Heading: any <section> whose first <h2> text contains an alias.
//
// A section that cannot be located is reported as not found. Callers treat
// that as "field unknown"; it is never an error.
package section
