package useragent

import "strings"

// Device, browser and OS classification is deliberately coarse: a handful of
// substring checks in a fixed order, enough to bucket scans for the dashboard.

func ClassifyDevice(ua string) string {
	uaLower := strings.ToLower(ua)

	// Tablet must be checked first: iPad user agents frequently contain
	// "Mobile" as well and would otherwise be swallowed by the mobile branch.
	if strings.Contains(uaLower, "tablet") || strings.Contains(uaLower, "ipad") {
		return "Tablet"
	}
	if strings.Contains(uaLower, "mobile") || strings.Contains(uaLower, "android") {
		return "Mobile"
	}
	return "Desktop"
}

func ClassifyBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	default:
		return "Unknown"
	}
}

func ClassifyOS(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iOS"), strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		return "iOS"
	default:
		return "Unknown"
	}
}
