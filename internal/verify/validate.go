package verify

import "regexp"

var (
	// Dotted labels, alphanumeric plus inner hyphens, alphabetic TLD.
	domainRe = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
	// One label, alphanumeric plus inner hyphens.
	subdomainRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
)

func validDomain(domain string) bool {
	return len(domain) <= 253 && domainRe.MatchString(domain)
}

func validSubdomain(subdomain string) bool {
	return len(subdomain) <= 63 && subdomainRe.MatchString(subdomain)
}
