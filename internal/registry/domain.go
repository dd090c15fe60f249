package registry

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// RegistrableDomain extracts the registrable domain (eTLD+1) from a URL.
// Falls back to the bare host when the public-suffix list cannot resolve
// it (IPs, localhost, single-label hosts). Empty string for unparseable
// input.
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// officialSuffixes are domain suffixes that mark government/military
// control regardless of registry contents.
var officialSuffixes = []string{".gov", ".mil", ".gouv.fr", ".gov.cn", ".gov.uk", ".gov.ru"}

// OfficialDomain reports whether the domain carries a government/military
// suffix.
func OfficialDomain(domain string) bool {
	d := strings.ToLower(domain)
	for _, suf := range officialSuffixes {
		if strings.HasSuffix(d, suf) || d == strings.TrimPrefix(suf, ".") {
			return true
		}
	}
	return false
}
