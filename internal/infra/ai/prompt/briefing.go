package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/complyhub/internal/domain/ai"
)

// SystemPrompt fixes tone and structure of the executive briefing.
func SystemPrompt() string {
	return `You are a senior compliance advisor writing for a board-level audience. You receive a structured risk analysis of a regulatory compliance assessment as JSON.

Requirements:
- Write plain prose, no markdown headings, no code fences.
- Start with one sentence stating the overall risk score and what it means.
- Cover the strategy matrix rows in the order given, naming the business owner and timeline of each.
- Do not invent scores, gaps or vendors that are not in the input. Never change a number.
- Keep it under 300 words.`
}

// UserPrompt embeds the analysis as compact JSON.
func UserPrompt(req ai.BriefRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	framework := req.Framework
	if framework == "" {
		framework = "the applicable regulations"
	}
	return fmt.Sprintf("Write the executive briefing for assessment %s against %s.\nAnalysis:\n%s", req.AssessmentID, framework, b), nil
}
