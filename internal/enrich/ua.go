// Package enrich derives the coarse geo and user-agent attributes the audit
// log stores alongside each login event.
package enrich

import "strings"

// Fingerprint buckets a raw user-agent string into coarse labels. This is
// deliberately not device fingerprinting; three labels is all the audit log
// carries.
type Fingerprint struct {
	Browser string
	Device  string
	OS      string
}

// ParseUserAgent derives browser, device and OS buckets from a raw
// user-agent. Unrecognized agents land in the "Unknown" bucket.
func ParseUserAgent(raw string) Fingerprint {
	ua := strings.ToLower(raw)
	fp := Fingerprint{Browser: "Unknown", Device: "Desktop", OS: "Unknown"}
	if raw == "" {
		fp.Device = "Unknown"
		return fp
	}

	switch {
	case strings.Contains(ua, "bot") || strings.Contains(ua, "spider") || strings.Contains(ua, "crawl"):
		fp.Browser = "Bot"
		fp.Device = "Bot"
		return fp
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		fp.Browser = "Edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		fp.Browser = "Opera"
	case strings.Contains(ua, "firefox"):
		fp.Browser = "Firefox"
	case strings.Contains(ua, "chrome"):
		fp.Browser = "Chrome"
	case strings.Contains(ua, "safari"):
		fp.Browser = "Safari"
	}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		fp.Device = "Tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "android"):
		fp.Device = "Mobile"
	}

	switch {
	case strings.Contains(ua, "android"):
		fp.OS = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		fp.OS = "iOS"
	case strings.Contains(ua, "windows"):
		fp.OS = "Windows"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		fp.OS = "macOS"
	case strings.Contains(ua, "linux"):
		fp.OS = "Linux"
	}

	return fp
}
