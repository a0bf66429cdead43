package browser

import (
	"net/http"
	"slices"

	"github.com/go-rod/rod/lib/proto"
)

// CookieParams converts a Cookie header value into DevTools cookie
// parameters scoped to rawURL. Malformed pairs are dropped.
func CookieParams(header, rawURL string) []*proto.NetworkCookieParam {
	if header == "" {
		return nil
	}
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return nil
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:   c.Name,
			Value:  c.Value,
			URL:    rawURL,
			Secure: true,
		})
	}
	return params
}

// HeaderPairs flattens headers into the key, value list SetExtraHeaders
// expects, sorted by key.
func HeaderPairs(headers map[string]string) []string {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, headers[k])
	}
	return pairs
}
