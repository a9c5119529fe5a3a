package sanitizer

// NormalizeStringSlice applies normalizer to every item and drops empty
// results and duplicates, keeping first-seen order.
func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	result := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		normalized := normalizer(item)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}

	return result
}

// NormalizeAmenities lowercases amenities so stored values and search
// criteria compare equal.
func NormalizeAmenities(amenities []string) []string {
	return NormalizeStringSlice(amenities, NormalizeKey)
}

func NormalizeURLs(urls []string) []string {
	return NormalizeStringSlice(urls, NormalizeURL)
}
