package trend

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrNoImage is returned by an ImageFinder when a search has no results
var ErrNoImage = errors.New("no image found")

// Image is a photo attached to a persisted trend, with attribution
type Image struct {
	URL        string `json:"url"`
	Thumb      string `json:"thumb"`
	Credit     string `json:"credit"`
	CreditLink string `json:"credit_link"`
}

// ImageFinder looks up a photo for a search query
type ImageFinder interface {
	FindImage(ctx context.Context, query string) (*Image, error)
}

var categoryImageQueries = map[string]string{
	"politics":      "politics government capitol",
	"technology":    "technology computer digital",
	"crypto":        "cryptocurrency bitcoin blockchain",
	"gaming":        "video games controller esports",
	"entertainment": "entertainment movies television",
	"memes":         "internet culture social media",
	"sports":        "sports stadium athletics",
	"news":          "breaking news journalism",
	"music":         "music concert performance",
	"culture":       "pop culture trends",
	"other":         "trending viral social",
}

// keywordImageQueries is checked in order; the first keyword found in the trend name wins
var keywordImageQueries = []struct {
	keyword string
	query   string
}{
	{"ai", "artificial intelligence technology"},
	{"npc", "video game character gaming"},
	{"meme", "internet meme funny"},
	{"stream", "live streaming video"},
	{"viral", "social media viral trending"},
	{"trump", "american politics"},
	{"biden", "american politics"},
	{"tiktok", "social media smartphone"},
	{"twitter", "social media technology"},
	{"youtube", "video streaming platform"},
	{"chatgpt", "artificial intelligence chatbot"},
	{"super_bowl", "american football superbowl"},
	{"breaking_bad", "television drama series"},
	{"skull", "skull emoji internet"},
	{"airport", "airplane airport travel"},
	{"christmas", "christmas holiday festive"},
	{"terraria", "video game pixel art"},
	{"instagram", "social media photography"},
	{"reddit", "social media community"},
	{"netflix", "streaming entertainment"},
}

// headline words that say nothing about what a photo should show
var imageStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true, "were": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true, "and": true,
	"or": true, "but": true, "with": true, "as": true, "by": true, "this": true, "that": true,
	"it": true, "its": true, "into": true, "across": true, "over": true, "how": true,
	"why": true, "what": true, "who": true, "when": true, "takes": true, "trend": true,
	"trending": true, "viral": true, "internet": true, "sparks": true,
}

var nonLetters = regexp.MustCompile(`[^a-zA-Z\s]`)

// ImageQuery picks a photo search query for doc: key words of the headline,
// then a keyword match on the trend name, then the category, then the key.
func ImageQuery(doc Document) string {
	if headline := doc.Analysis.Headline; len(headline) > 10 {
		var words []string
		for _, w := range strings.Fields(nonLetters.ReplaceAllString(headline, "")) {
			if len(w) > 2 && !imageStopWords[strings.ToLower(w)] {
				words = append(words, w)
				if len(words) == 4 {
					break
				}
			}
		}
		if len(words) > 0 {
			return strings.Join(words, " ")
		}
	}

	name := strings.ReplaceAll(strings.ToLower(doc.Trend), " ", "_")
	for _, kw := range keywordImageQueries {
		if strings.Contains(name, kw.keyword) {
			return kw.query
		}
	}

	category := doc.Category
	if category == "" {
		category = "other"
	}
	if q, ok := categoryImageQueries[category]; ok {
		return q
	}

	return doc.Key
}
