package content

import (
	"fmt"
	"sort"
	"strings"

	"trendradar/internal/domain/trend"
)

const maxPromptRelated = 3

const editorPrompt = `You are a senior news editor writing breaking news about viral internet trends. Explain WHY something is trending with real insight and analysis.

TREND: %s
PLATFORMS TRENDING ON: %s
METRICS: %s
RELATED TOPICS: %s

Write a compelling news report. Be specific about:
- What exactly is happening and why people care
- The context that makes this relevant right now
- Your professional analysis of what is driving this trend

Respond with this exact JSON structure:
{
  "headline": "[Engaging news headline, 8-12 words, no quotes]",
  "summary": "[2-3 sentences explaining what is happening and why it is trending now]",
  "origin_story": "[1-2 sentences on where and how this started]",
  "analysis": "[Your expert take on what this trend reveals about internet culture, 2-3 sentences]",
  "impact": "[One sentence on real-world implications or reach]",
  "status": "[rising/viral/stable/declining]",
  "category": "[entertainment/technology/memes/politics/sports/music/gaming/culture/news/crypto]"
}

Write like a real journalist. Return ONLY valid JSON.`

func buildPrompt(req trend.ContentRequest) string {
	platforms := make([]string, len(req.Platforms))
	for i, p := range req.Platforms {
		platforms[i] = string(p)
	}

	names := make([]string, 0, len(req.Metrics))
	for name := range req.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	metrics := make([]string, 0, len(names))
	for _, name := range names {
		metrics = append(metrics, fmt.Sprintf("%s: %s", name, trend.FormatCount(req.Metrics[name])))
	}

	related := "none"
	if len(req.Related) > 0 {
		r := req.Related
		if len(r) > maxPromptRelated {
			r = r[:maxPromptRelated]
		}
		related = strings.Join(r, ", ")
	}

	return fmt.Sprintf(editorPrompt,
		req.Name,
		strings.Join(platforms, ", "),
		strings.Join(metrics, ", "),
		related,
	)
}
