package llm

import (
	"fmt"
	"regexp"
	"strings"

	"NatureDaily/internal/domain"
)

const summaryPromptTemplate = `Analyze the following research paper and write a concise, accurate summary.

Title: %s
Authors: %s
Abstract: %s

The summary should:
1. State the research background and goal
2. Describe the main methods and experimental design
3. Report the key findings and results
4. Point out the novelty and significance

Answer in clear, professional prose.`

const keyPointsPromptTemplate = `Extract 3-5 key points from the following research paper.

Title: %s
Abstract: %s
Generated summary: %s

Each key point should be short and concrete, cover a method, finding or application,
and the list should be ordered by importance. Return one key point per line.`

var bulletPrefix = regexp.MustCompile(`^(?:\d+[.)]|[-*•+])\s*`)

func summaryPrompt(a domain.Article) string {
	return fmt.Sprintf(summaryPromptTemplate, a.Title, strings.Join(a.Authors, ", "), a.Abstract)
}

func keyPointsPrompt(a domain.Article, summary string) string {
	return fmt.Sprintf(keyPointsPromptTemplate, a.Title, a.Abstract, summary)
}

// ParseKeyPoints reads one point per line. Blank lines and markdown headings are
// skipped, leading numbering and bullets are stripped, and at most max points are kept.
func ParseKeyPoints(text string, max int) []string {
	var points []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		points = append(points, line)
		if max > 0 && len(points) == max {
			break
		}
	}
	return points
}
