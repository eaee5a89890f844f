// Package platform classifies requests from the User-Agent header alone.
// No network calls, no state.
package platform

import "strings"

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

type Classification struct {
	Platform Platform
	IsMobile bool
}

// Classify buckets a user agent. iPhone/iPad/iPod signatures win over
// Android (some iOS webviews mention both), everything else is web.
func Classify(userAgent string) Classification {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return Classification{Platform: PlatformIOS, IsMobile: true}
	case strings.Contains(ua, "android"):
		return Classification{Platform: PlatformAndroid, IsMobile: true}
	default:
		return Classification{Platform: PlatformWeb, IsMobile: false}
	}
}

// Browser derives a coarse browser label for click records.
func Browser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg/"), strings.Contains(ua, "edge"):
		return "edge"
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		return "opera"
	case strings.Contains(ua, "samsungbrowser"):
		return "samsung"
	case strings.Contains(ua, "firefox"):
		return "firefox"
	case strings.Contains(ua, "chrome"), strings.Contains(ua, "crios"):
		return "chrome"
	case strings.Contains(ua, "safari"):
		return "safari"
	default:
		return "other"
	}
}

// OS derives the operating system label used in the install fingerprint.
func OS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return "iOS"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		return "macOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	default:
		return "unknown"
	}
}
