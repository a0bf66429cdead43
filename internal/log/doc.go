// Package log provides secure logging built on log/slog.
//
// The SecureHandler masks values that would leak a signed-in session or the
// catalog credentials:
//   - Cookie and Authorization headers, bearer and basic credentials
//   - professional-network session cookies (li_at, JSESSIONID, li_rm)
//     whether logged under their own key or inside a cookie string
//   - JWT-looking values and long opaque tokens
//
// Masking applies in verbose mode too, so debug logs can be shared.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("page fetched", "url", u, "cookie", cookie) // cookie is masked
//	slog.SetDefault(logger)
package log
