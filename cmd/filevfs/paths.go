package main

import (
	"errors"
	"strings"
)

var errMissingArgument = errors.New("missing required argument")

// splitParentName splits a "/"-separated virtual path into its parent path
// and final name, e.g. "/a/b/c" -> ("/a/b", "c"), "/c" -> ("/", "c").
func splitParentName(path string) (parent, name string) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/", ""
	}

	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return "/", trimmed
	}

	return "/" + trimmed[:idx], trimmed[idx+1:]
}
