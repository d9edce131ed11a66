package domain

import (
	"net/url"
	"strings"
)

// UnknownSite is returned by SiteFromURL when no hostname can be derived.
const UnknownSite = "unknown"

// secondLevelLabels are labels that, in second-to-last position, make the
// public suffix two labels wide (e.g. "com.pe", "co.uk").
var secondLevelLabels = map[string]bool{
	"com": true,
	"co":  true,
	"org": true,
	"net": true,
	"gov": true,
	"edu": true,
	"ac":  true,
}

// SiteFromURL derives a short site identifier from a URL's hostname:
// "https://www.falabella.com.pe/x" -> "falabella", "https://amazon.com" -> "amazon".
// Every caller that keys data by site must go through this function so that
// raw jobs and extracted entities land in the same partition.
func SiteFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return UnknownSite
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return UnknownSite
	}
	host = strings.TrimPrefix(host, "www.")

	parts := strings.Split(host, ".")
	switch {
	case len(parts) >= 3:
		if secondLevelLabels[parts[len(parts)-2]] {
			return parts[len(parts)-3]
		}
		return parts[len(parts)-2]
	case len(parts) == 2:
		return parts[0]
	default:
		return parts[0]
	}
}

// UniqueKey builds the composite identity used for deduplication.
func UniqueKey(site, entityID string) string {
	return site + ":" + entityID
}
