package config

import "maps"

// SessionConfig holds the session sent with page requests.
type SessionConfig struct {
	// Cookie is a Cookie header value, e.g. "li_at=...; JSESSIONID=...".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// CatalogConfig locates the catalog service.
type CatalogConfig struct {
	URL   string `yaml:"url,omitempty"`
	Token string `yaml:"token,omitempty"`
}

// BrowserConfig configures the browser source. Pointer fields distinguish
// "not set" from false.
type BrowserConfig struct {
	RemoteURL string `yaml:"remoteURL,omitempty"`
	Headless  *bool  `yaml:"headless,omitempty"`
	Stealth   *bool  `yaml:"stealth,omitempty"`
}

// File represents the structure of the .prospector configuration file.
type File struct {
	Catalog CatalogConfig `yaml:"catalog,omitempty"`
	Browser BrowserConfig `yaml:"browser,omitempty"`

	// Session is applied to every host.
	Session SessionConfig `yaml:"session,omitempty"`

	// Sites overrides Session per host name.
	Sites map[string]SessionConfig `yaml:"sites,omitempty"`

	// Locale is the path of a vocabulary table override.
	Locale string `yaml:"locale,omitempty"`

	// DBDir overrides the history database directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// SessionFor returns the session for host, merging the host entry over the
// global session.
func (f *File) SessionFor(host string) SessionConfig {
	result := SessionConfig{
		Cookie:  f.Session.Cookie,
		Headers: maps.Clone(f.Session.Headers),
	}

	site, ok := f.Sites[host]
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	return result
}
