package domain

import "strings"

// MediaPublicID derives the storage public id of a stored media file from its
// URL: the last path segment up to its first dot.
func MediaPublicID(url string) string {
	if url == "" {
		return ""
	}
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	segment := url[strings.LastIndex(url, "/")+1:]
	if i := strings.Index(segment, "."); i >= 0 {
		segment = segment[:i]
	}
	return segment
}
