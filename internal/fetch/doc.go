// Package fetch loads profile pages over HTTP.
//
// A Fetcher is a dom.Loader backed by resty. It sends the configured session
// cookie and headers with every request so that pages which require a
// signed-in session render their full content. Open returns a dom.Static
// positioned on the fetched page whose navigation is served by the same
// Fetcher.
package fetch
