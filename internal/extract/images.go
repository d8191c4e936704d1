package extract

import "strings"

// ImageFilter selects gallery images from raw src attributes
type ImageFilter struct {
	Exclude     []string
	ThumbPrefix string
	Max         int
}

// Collect drops empty sources and any containing an excluded word (case-insensitive),
// strips the thumbnail prefix and de-duplicates on the resulting URL, keeping first-seen order.
// It returns at most Max URLs along with the de-duplicated count before the cap.
func (f ImageFilter) Collect(srcs []string) ([]string, int) {
	seen := make(map[string]bool, len(srcs))
	var urls []string
	for _, src := range srcs {
		src = strings.TrimSpace(src)
		if src == "" || ContainsAnyFold(src, f.Exclude) {
			continue
		}
		full := src
		if f.ThumbPrefix != "" {
			full = strings.ReplaceAll(src, f.ThumbPrefix, "")
		}
		if seen[full] {
			continue
		}
		seen[full] = true
		urls = append(urls, full)
	}

	count := len(urls)
	if f.Max > 0 && len(urls) > f.Max {
		urls = urls[:f.Max]
	}
	return urls, count
}
