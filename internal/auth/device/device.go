// Package device derives human-readable session device names and stable
// device fingerprints from User-Agent strings.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

// Service computes device fingerprints for session binding. Fingerprinting
// can be disabled; display name parsing works regardless.
type Service struct {
	fingerprintEnabled bool
}

func NewService(fingerprintEnabled bool) *Service {
	return &Service{fingerprintEnabled: fingerprintEnabled}
}

// ParseUserAgent turns a raw User-Agent into a display name like
// "Chrome on Mac OS X" for the session listing.
func ParseUserAgent(rawUA string) string {
	if rawUA == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OSInfo().Name
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	// Mobile platforms (iPhone, iPad) are more recognizable than the OS string.
	if platform := ua.Platform(); platform != "" && !strings.Contains(os, platform) {
		os = os + " (" + platform + ")"
	}
	return strings.TrimSpace(browser + " on " + os)
}

// ComputeFingerprint hashes the stable parts of the User-Agent: browser name,
// browser major version, and OS. Minor browser updates keep the same
// fingerprint; a browser or OS switch changes it.
func (s *Service) ComputeFingerprint(rawUA string) string {
	if !s.fingerprintEnabled {
		return ""
	}

	ua := useragent.New(rawUA)
	browser, version := ua.Browser()
	major := version
	if idx := strings.Index(version, "."); idx != -1 {
		major = version[:idx]
	}

	material := browser + "|" + major + "|" + ua.OS()
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether two fingerprints match and whether the
// difference counts as device drift.
func (s *Service) CompareFingerprints(stored, observed string) (matched, drift bool) {
	if stored == observed {
		return true, false
	}
	return false, true
}
