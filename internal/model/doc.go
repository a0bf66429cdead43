// Package model defines the data structures shared across prospector.
//
// This package contains the following main types:
//   - ProfileRecord: The assembled prospect record and its JSON wire contract
//   - ExperienceEntry: One past or current position from the experience section
//   - RecentPost: An excerpt of a recent activity item
//
// The completeness score is derived from a ProfileRecord on demand and is
// never stored alongside it.
package model
