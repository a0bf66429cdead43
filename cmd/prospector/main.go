// Package main provides the entry point for the prospector CLI.
//
// prospector extracts a structured prospect record from a professional
// network profile page, optionally submits it to a campaign catalog, and
// keeps a local history of extractions.
//
// Usage:
//
//	prospector extract profile.html
//	prospector extract --source http https://www.linkedin.com/in/someone/
//	prospector push --campaign 12 https://www.linkedin.com/in/someone/
//
// See --help for all available options.
package main

// main is the entry point for prospector.
func main() {
	Execute()
}
