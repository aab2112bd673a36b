package x12

import (
	"os"
	"strings"
)

// IsData returns true if the input appears to be an inline X12 message,
// i.e. it begins with the literal ISA control segment tag.
func IsData(input string) bool {
	return strings.HasPrefix(input, SegmentISA)
}

// IsFile returns true if the path resolves to an existing non-directory file
// whose first isaSegmentLength bytes begin with the ISA tag. Environment and
// user variables are expanded within the path.
func IsFile(path string, isaSegmentLength int) bool {
	if path == "" {
		return false
	}

	expanded := ExpandPath(path)
	info, err := os.Stat(expanded)
	if err != nil || info.IsDir() {
		return false
	}

	f, err := os.Open(expanded)
	if err != nil {
		return false
	}
	defer f.Close()

	prefix := make([]byte, isaSegmentLength)
	n, err := f.Read(prefix)
	if err != nil && n == 0 {
		return false
	}

	return IsData(string(prefix[:n]))
}

// ExpandPath expands environment variables and a leading "~" in a file path.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}
