package server

import (
	"fmt"
	"os"
	"strings"

	"github.com/open-atom-club/deadlines/internal/deadline"
)

// DetectZone resolves the host environment's IANA zone identifier: the TZ
// environment variable when set, otherwise the /etc/localtime symlink target.
// It is only invoked on explicit user request, never automatically.
func DetectZone() (string, error) {
	if tz := os.Getenv("TZ"); tz != "" && deadline.ValidZone(tz) {
		return tz, nil
	}
	target, err := os.Readlink("/etc/localtime")
	if err != nil {
		return "", fmt.Errorf("detect timezone: %w", err)
	}
	// Typical targets: /usr/share/zoneinfo/Asia/Shanghai or ../usr/share/zoneinfo/UTC
	const marker = "zoneinfo/"
	idx := strings.LastIndex(target, marker)
	if idx == -1 {
		return "", fmt.Errorf("detect timezone: unexpected localtime target %q", target)
	}
	zone := target[idx+len(marker):]
	if !deadline.ValidZone(zone) {
		return "", fmt.Errorf("detect timezone: unknown zone %q", zone)
	}
	return zone, nil
}
