// Package pathutil maps request paths to metric labels.
package pathutil

import "strings"

// Unmatched is the label of every path the API does not serve.
const Unmatched = "/unmatched"

// knownPaths are the routes registered by cmd/api.
var knownPaths = map[string]struct{}{
	"/":                          {},
	"/health":                    {},
	"/health/ai":                 {},
	"/ready":                     {},
	"/ready/ai":                  {},
	"/live":                      {},
	"/metrics":                   {},
	"/analyze/deep":              {},
	"/agent/ask":                 {},
	"/agents/news_fetch":         {},
	"/agents/truth_verification": {},
	"/agents/summary":            {},
	"/agents/impact":             {},
	"/agents/media_forensics":    {},
	"/agents/map_intelligence":   {},
	"/agents/metal_prices":       {},
}

// NormalizePath returns path without query or trailing slash when it is a
// served route, and Unmatched otherwise, so scanners probing random paths
// cannot inflate label cardinality.
//
//	NormalizePath("/agents/summary/")   // "/agents/summary"
//	NormalizePath("/health?verbose=1")  // "/health"
//	NormalizePath("/wp-admin/login.php") // "/unmatched"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := knownPaths[path]; ok {
		return path
	}
	return Unmatched
}

// ExpectedCardinality is the number of distinct labels NormalizePath can
// produce.
func ExpectedCardinality() int {
	return len(knownPaths) + 1
}
