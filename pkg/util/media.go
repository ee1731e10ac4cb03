package util

import (
	"strconv"
	"strings"
)

// ParseFrameRate converts an ffprobe rational frame rate like "30000/1001"
// into a float. Returns 0 for malformed input.
func ParseFrameRate(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)

	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}

	if len(parts) == 1 {
		return num
	}

	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}

	return num / den
}

// IsVideoFile reports whether the path has a supported video extension.
func IsVideoFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".mp4", ".avi", ".mov", ".mkv", ".webm"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
