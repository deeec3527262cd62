package filevfs

import "strings"

// pathString renders a sequence of path parts as the "/"-separated
// absolute path internal/storage.Navigate expects, with a leading slash —
// "/" for the root itself.
func pathString(parts []string) string {
	if len(parts) == 0 {
		return "/"
	}

	return "/" + strings.Join(parts, "/")
}

// representPath renders a node's absolute path for display rather than
// navigation, matching pathString's form including the leading slash.
func representPath(parts []string) string {
	return pathString(parts)
}

func childParts(parts []string, name string) []string {
	out := make([]string, len(parts)+1)
	copy(out, parts)
	out[len(parts)] = name

	return out
}

// splitCLIPath turns a "/"-separated path (as typed on a command line, with
// or without a leading slash) into its non-empty parts.
func splitCLIPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, "/")
}
