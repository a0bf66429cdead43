// Package materialize retrieves content that only exists after a
// client-side navigation, and puts the document back where it was.
//
// A run moves through the states
//
//	Idle -> Navigating -> Polling -> (Found | TimedOut | Failed) -> Restored
//
// The forward navigation acquires the document's navigation position. Once
// acquired, the position is released by exactly one Back call on every exit
// path, including panics raised by the Source. When the navigation control
// is absent the run goes from Idle straight to Restored without touching the
// document. A failed control lookup records Failed and never calls Back.
package materialize
