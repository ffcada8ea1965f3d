package llm

import (
	_ "embed"
	"strings"
)

// SystemPrompt is sent as the system message by providers that support one.
const SystemPrompt = "You are a helpful assistant that extracts resume data into structured JSON format."

var (
	//go:embed prompts/resume_extraction.txt
	resumeExtractionPrompt string
	//go:embed prompts/enhance_bullet.txt
	enhanceBulletPrompt string
)

// BuildResumeExtractionPrompt embeds the extracted resume text in the fixed
// extraction instructions and example skeleton.
func BuildResumeExtractionPrompt(text string) string {
	return strings.NewReplacer("{{RESUME_TEXT}}", text).Replace(strings.TrimRight(resumeExtractionPrompt, "\n"))
}

// BuildEnhancePrompt asks for a stronger rewrite of a single bullet point.
func BuildEnhancePrompt(text string) string {
	return strings.NewReplacer("{{TEXT}}", text).Replace(strings.TrimRight(enhanceBulletPrompt, "\n"))
}
