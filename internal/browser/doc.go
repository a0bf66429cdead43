// Package browser drives a live Chrome page through go-rod and exposes it
// as a dom.Source.
//
// A Manager owns the browser process (launched locally or reached through a
// remote DevTools URL). Pages opened from it carry the configured session
// cookie and headers, and are optionally patched with go-rod/stealth. Follow
// clicks the navigation control the way a user would, so client-side routing
// runs, and Back uses the page history.
package browser
