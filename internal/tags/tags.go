// ABOUTME: Keyword-based tag extraction from episode titles and descriptions
// ABOUTME: Matches a fixed taxonomy of continuous-improvement topic groups

package tags

import (
	"sort"
	"strings"
)

// taxonomy maps a display tag to the lowercase keywords that imply it.
// Keyword matching is substring-based over the combined title+description
// text, mirroring how the directory has always been categorized.
var taxonomy = []struct {
	tag      string
	keywords []string
}{
	{
		tag: "Lean",
		keywords: []string{
			"lean", "kaizen", "continuous improvement", "gemba", "kata", "5s",
			"value stream", "waste", "muda", "muri", "mura", "just-in-time",
			"jidoka", "andon", "kanban", "poka-yoke", "takt time", "cycle time",
			"problem solving", "root cause", "5 whys", "a3", "pdca", "plan-do-check-act",
		},
	},
	{
		tag: "Leadership",
		keywords: []string{
			"leadership", "management", "culture", "change", "transformation",
			"coaching", "mentoring", "team", "organization", "strategy",
		},
	},
	{
		tag: "Technology",
		keywords: []string{
			"technology", "digital", "automation", "ai", "machine learning",
			"software", "agile", "scrum", "devops", "innovation",
		},
	},
	{
		tag: "Healthcare",
		keywords: []string{
			"healthcare", "hospital", "medical", "patient", "clinical", "health",
		},
	},
	{
		tag: "Quality",
		keywords: []string{
			"quality", "six sigma", "excellence", "improvement", "process",
			"standardization", "metrics", "performance",
		},
	},
}

// Extract returns the taxonomy tags implied by the title and description,
// plus any explicit categories, deduplicated and sorted for deterministic
// storage.
func Extract(title, description string, categories ...string) []string {
	text := strings.ToLower(title + " " + description)

	seen := make(map[string]bool)
	for _, group := range taxonomy {
		for _, keyword := range group.keywords {
			if strings.Contains(text, keyword) {
				seen[group.tag] = true
				break
			}
		}
	}

	for _, category := range categories {
		category = strings.TrimSpace(category)
		if category != "" {
			seen[category] = true
		}
	}

	if len(seen) == 0 {
		return nil
	}

	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
