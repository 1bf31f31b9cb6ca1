//go:build linux || darwin

package transport

// candidatePaths returns path if non-empty, otherwise the platform's
// conventional CC253x USB-CDC device nodes in probe order.
func candidatePaths(path string) []string {
	if path != "" {
		return []string{path}
	}
	return []string{"/dev/ttyUSB0", "/dev/ttyACM0", "/dev/ttyUSB1"}
}
