package constants

import "strings"

// SampleKeywords mark a field key as sample-related when it has no explicit
// kind or sample link. Used to split general information from sample data.
var SampleKeywords = []string{
	"sample", "matrix", "grab", "composite", "container", "analysis",
	"parameter", "method", "collected", "received", "preservative",
	"volume", "size", "type", "source", "description", "work order",
}

// IsSampleKeyword reports whether the (lower-cased) key mentions any of the
// sample vocabulary.
func IsSampleKeyword(key string) bool {
	k := strings.ToLower(key)
	for _, w := range SampleKeywords {
		if strings.Contains(k, w) {
			return true
		}
	}
	return false
}

// IsSampleIDKey reports whether a key names the sample identifier itself,
// in any of the shapes the generator has been seen to use.
func IsSampleIDKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "sample_id", "customer_sample_id", "customer sample id":
		return true
	}
	return strings.HasSuffix(k, "_sample_id")
}
