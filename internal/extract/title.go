// Package extract holds the text rules applied to scraped strings: title parsing,
// number and payment parsing, image list filtering and phone lookup.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"dealerscraper/internal/models"
)

const defaultMaxModel = 3

var (
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	slugIDSuffix = regexp.MustCompile(`-\d{6,}$`)
)

// VehicleName is the year, make and model derived from a listing title
type VehicleName struct {
	Year  models.Int
	Make  string
	Model string
}

// TitleParser derives a VehicleName from a free-text title
type TitleParser struct {
	stopWords map[string]bool
	maxTokens int
}

// NewTitleParser builds a parser. Stop words are matched case-insensitively;
// maxTokens <= 0 uses the default of 3.
func NewTitleParser(stopWords []string, maxTokens int) *TitleParser {
	if maxTokens <= 0 {
		maxTokens = defaultMaxModel
	}
	stop := make(map[string]bool, len(stopWords))
	for _, w := range stopWords {
		stop[strings.ToUpper(w)] = true
	}
	return &TitleParser{stopWords: stop, maxTokens: maxTokens}
}

// Parse finds the first 19xx/20xx token as the year, takes the next token as the make
// and greedily collects model tokens until a stop word, a token with punctuation other
// than hyphens, or the token limit. Without a year every field is the sentinel.
func (p *TitleParser) Parse(title string) VehicleName {
	name := VehicleName{Make: models.NA, Model: models.NA}
	title = strings.TrimSpace(title)
	if title == "" || title == models.NA {
		return name
	}

	loc := yearPattern.FindStringIndex(title)
	if loc == nil {
		return name
	}
	year, _ := strconv.Atoi(title[loc[0]:loc[1]])
	name.Year = models.IntOf(year)

	words := strings.Fields(title[loc[1]:])
	if len(words) == 0 {
		return name
	}
	name.Make = words[0]

	var modelWords []string
	for _, word := range words[1:] {
		if p.stopWords[strings.ToUpper(word)] || !isAlnum(strings.ReplaceAll(word, "-", "")) {
			break
		}
		modelWords = append(modelWords, word)
		if len(modelWords) >= p.maxTokens {
			break
		}
	}

	switch {
	case len(modelWords) > 0:
		name.Model = strings.Join(modelWords, " ")
	case len(words) > 1:
		name.Model = words[1]
	}
	return name
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// TitleFromPageTitle returns the part of a document title before sep, trimmed
func TitleFromPageTitle(pageTitle, sep string) string {
	pageTitle = strings.TrimSpace(pageTitle)
	if sep != "" {
		if i := strings.Index(pageTitle, sep); i >= 0 {
			return strings.TrimSpace(pageTitle[:i])
		}
	}
	return pageTitle
}

// TitleFromURL turns the last path segment of a detail URL into a title:
// a trailing numeric id is dropped, hyphens become spaces and words are title-cased.
func TitleFromURL(detailURL string) string {
	slug := detailURL
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	slug = slugIDSuffix.ReplaceAllString(slug, "")
	return TitleCase(strings.ReplaceAll(slug, "-", " "))
}

// TitleCase upper-cases every letter that follows a non-letter and lower-cases the rest,
// so "2019 honda cr-v 4x4" becomes "2019 Honda Cr-V 4X4".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// Usable reports whether a candidate title is good enough to stop the fallback chain
func Usable(title string, minLength int) bool {
	title = strings.TrimSpace(title)
	if title == "" || title == models.NA {
		return false
	}
	return len([]rune(title)) >= minLength
}
