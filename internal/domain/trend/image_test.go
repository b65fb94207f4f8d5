package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageQuery(t *testing.T) {
	cases := []struct {
		name string
		doc  Document
		want string
	}{
		{
			name: "headline key words",
			doc:  Document{Trend: "Bitcoin", Analysis: Analysis{Headline: "Bitcoin Smashes Records as ETF Inflows Surge!"}},
			want: "Bitcoin Smashes Records ETF",
		},
		{
			name: "fallback headline leaves only the name",
			doc:  Document{Trend: "Dune", Analysis: Analysis{Headline: "Dune Takes Over The Internet"}},
			want: "Dune",
		},
		{
			name: "short headline falls through to keyword",
			doc:  Document{Trend: "ChatGPT Down", Analysis: Analysis{Headline: "Outage"}},
			want: "artificial intelligence chatbot",
		},
		{
			name: "multi word keyword",
			doc:  Document{Trend: "Super Bowl", Category: "sports"},
			want: "american football superbowl",
		},
		{
			name: "category",
			doc:  Document{Trend: "Eclipse", Category: "news"},
			want: "breaking news journalism",
		},
		{
			name: "empty category uses other",
			doc:  Document{Trend: "Eclipse"},
			want: "trending viral social",
		},
		{
			name: "unknown category uses key",
			doc:  Document{Trend: "Eclipse", Key: "eclipse", Category: "astronomy"},
			want: "eclipse",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ImageQuery(tc.doc))
		})
	}
}
