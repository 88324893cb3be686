package identity

import (
	"regexp"
	"strings"
)

var (
	mobileRe       = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
	androidVerRe   = regexp.MustCompile(`(?i)Android ([\d.]+)`)
	androidModelRe = regexp.MustCompile(`(?i); ([^;)]+) Build/`)
	androidAltRe   = regexp.MustCompile(`(?i); ([^;)]+)\)`)
	iosVerRe       = regexp.MustCompile(`(?i)OS ([\d_]+)`)
	winVerRe       = regexp.MustCompile(`(?i)Windows NT ([\d.]+)`)
	macVerRe       = regexp.MustCompile(`(?i)Mac OS X ([\d_.]+)`)
)

var windowsVersions = map[string]string{
	"10.0": "10",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
	"6.0":  "Vista",
	"5.2":  "XP x64",
	"5.1":  "XP",
}

// DetectModel guesses a human-readable device model from a User-Agent
// string, e.g. "Android 13 - SM-X200 - Chrome" or "Windows 10 - Edge".
// Returns "Desconhecido" when the User-Agent is empty.
func DetectModel(ua string) string {
	if ua == "" {
		return "Desconhecido"
	}

	var model string
	if mobileRe.MatchString(ua) {
		model = detectMobile(ua)
	} else {
		model = detectDesktop(ua)
	}

	if browser := detectBrowser(ua); browser != "" {
		model += " - " + browser
	}
	return model
}

func detectMobile(ua string) string {
	switch {
	case strings.Contains(ua, "iPad"):
		if m := iosVerRe.FindStringSubmatch(ua); m != nil {
			return "iPad (iOS " + strings.ReplaceAll(m[1], "_", ".") + ")"
		}
		return "iPad"
	case strings.Contains(ua, "iPhone"):
		if m := iosVerRe.FindStringSubmatch(ua); m != nil {
			return "iPhone (iOS " + strings.ReplaceAll(m[1], "_", ".") + ")"
		}
		return "iPhone"
	case strings.Contains(ua, "Android"):
		model := "Android"
		if m := androidVerRe.FindStringSubmatch(ua); m != nil {
			model += " " + m[1]
		}
		if m := androidModelRe.FindStringSubmatch(ua); m != nil {
			model += " - " + strings.TrimSpace(m[1])
		} else if m := androidAltRe.FindStringSubmatch(ua); m != nil {
			model += " - " + strings.TrimSpace(m[1])
		}
		return model
	case strings.Contains(ua, "Windows Phone"):
		return "Windows Phone"
	default:
		return "Dispositivo Móvel"
	}
}

func detectDesktop(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		model := "Windows"
		if m := winVerRe.FindStringSubmatch(ua); m != nil {
			if v, ok := windowsVersions[m[1]]; ok {
				model += " " + v
			} else {
				model += " " + m[1]
			}
		}
		return model
	case strings.Contains(ua, "Macintosh"):
		if m := macVerRe.FindStringSubmatch(ua); m != nil {
			return "Mac (macOS " + strings.ReplaceAll(m[1], "_", ".") + ")"
		}
		return "Mac"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return "Desktop"
	}
}

func detectBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "Edg"):
		return "Edge"
	case strings.Contains(ua, "OPR"):
		return "Opera"
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	default:
		return ""
	}
}
