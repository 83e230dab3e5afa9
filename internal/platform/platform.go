// Package platform classifies application URLs into the platform family that knows how to apply on them.
package platform

import (
	"net/url"
	"strings"
)

// Platform represents a class of application website.
type Platform string

const (
	// LinkedIn is the professional network, with Easy Apply and external apply flows
	LinkedIn Platform = "linkedin"
	// Workday is the Workday applicant-tracking system
	Workday Platform = "workday"
	// Taleo is the Taleo applicant-tracking system
	Taleo Platform = "taleo"
	// Generic is any site no other platform claims
	Generic Platform = "generic"
)

// identifier pairs a hostname substring with the platform it selects.
type identifier struct {
	substr   string
	platform Platform
}

// identifiers is evaluated in order and the first match wins.
var identifiers = []identifier{
	{"linkedin", LinkedIn},
	{"workday", Workday},
	{"taleo", Taleo},
}

// Classify identifies the platform from an application URL.
// It never fails: URLs that cannot be parsed or match no identifier are Generic.
func Classify(rawURL string) Platform {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Generic
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return Generic
	}

	for _, id := range identifiers {
		if strings.Contains(host, id.substr) {
			return id.platform
		}
	}
	return Generic
}

// All returns every platform in classification order, Generic last.
func All() []Platform {
	out := make([]Platform, 0, len(identifiers)+1)
	for _, id := range identifiers {
		out = append(out, id.platform)
	}
	return append(out, Generic)
}

func (p Platform) String() string {
	return string(p)
}
