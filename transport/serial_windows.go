//go:build windows

package transport

// candidatePaths returns path if non-empty, otherwise the conventional
// first few COM ports to probe.
func candidatePaths(path string) []string {
	if path != "" {
		return []string{path}
	}
	return []string{"COM3", "COM4", "COM5"}
}
