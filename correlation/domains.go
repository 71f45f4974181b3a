package correlation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/insightwire/insightwire-go/lib"
)

// IsDomainExcluded reports whether the correlation header must not be sent to
// the given target. With no exclusion list or an empty URL the header is
// always allowed; a target whose hostname cannot be resolved is treated as
// excluded, failing safe toward not leaking correlation data cross-domain.
func IsDomainExcluded(cfg *lib.Config, targetURL string) bool {
	if cfg == nil || len(cfg.CorrelationHeaderExcludedDomains) == 0 || targetURL == "" {
		return false
	}

	u, err := url.Parse(targetURL)
	if err != nil || u.Hostname() == "" {
		return true
	}
	host := u.Hostname()

	for _, pattern := range cfg.CorrelationHeaderExcludedDomains {
		matcher, err := compileDomainPattern(pattern, cfg.LiteralDomainDots.Bool)
		if err != nil {
			continue
		}
		if matcher.MatchString(host) {
			return true
		}
	}
	return false
}

// compileDomainPattern translates a glob-like exclusion pattern into a
// matcher. `*` matches any substring; every other character matches itself,
// except that by default a dot matches any character: the historical matcher
// built regular expressions without escaping dots, and deployments rely on
// that. Passing literalDots restores strict glob semantics.
func compileDomainPattern(pattern string, literalDots bool) (*regexp.Regexp, error) {
	var b strings.Builder
	for _, r := range pattern {
		switch {
		case r == '*':
			b.WriteString(".*")
		case r == '.' && !literalDots:
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return regexp.Compile(b.String())
}
