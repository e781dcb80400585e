// Package urlnorm canonicalizes evidence URLs and applies the static exclusion policy.
package urlnorm

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// trackingParams are dropped from every canonical URL in addition to any utm_* key.
var trackingParams = map[string]bool{
	"fbclid": true,
	"gclid":  true,
}

func isTrackingParam(key string) bool {
	lk := strings.ToLower(key)
	return strings.HasPrefix(lk, "utm_") || trackingParams[lk]
}

// Canonicalize strips tracking parameters, forces the https scheme, drops the
// fragment and re-serializes the remaining query with the first value of each
// key. Keys are emitted in sorted order. Only an unparseable URL is returned
// as-is; a malformed query keeps whatever pairs it has.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parseQuery(u.RawQuery)

	kept := url.Values{}
	for k, vals := range query {
		if isTrackingParam(k) {
			continue
		}
		for _, v := range vals {
			// Blank values are dropped, matching form-decoding semantics upstream.
			if v != "" {
				kept.Set(k, v)
				break
			}
		}
	}

	u.Scheme = "https"
	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false
	u.RawQuery = kept.Encode()
	return u.String()
}

// parseQuery splits a raw query on '&' only, so ';' stays part of a value.
// Pairs without '=' or with an empty key are skipped; components that fail
// to unescape are kept literally.
func parseQuery(raw string) url.Values {
	values := url.Values{}
	for _, pair := range strings.Split(raw, "&") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			continue
		}
		values.Add(unescapeLenient(k), unescapeLenient(v))
	}
	return values
}

func unescapeLenient(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return strings.ReplaceAll(s, "+", " ")
}

// Hostname returns the lowercased host of rawURL without port, or "" when it
// cannot be parsed.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// Domain returns the registrable domain (eTLD+1) of rawURL's host. Hosts
// without a public suffix match (IPs, localhost) are returned unchanged.
func Domain(rawURL string) string {
	host := Hostname(rawURL)
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}
