package llm

import "fmt"

const articleSystemPrompt = "You are a professional journalist for VELARA, a premium news agency. " +
	"Reply with one JSON object only, no commentary."

const articleUserPrompt = `Write a comprehensive news article about: %q.

Return the response in strictly valid JSON format with exactly these keys:
- title: A catchy, professional headline.
- content: The full article body (approx 300-500 words), formatted with HTML tags (<p>, <h2>, etc.) for readability.
- excerpt: A short 2-sentence summary for the preview card.`

func buildArticlePrompt(topic string) Prompt {
	return Prompt{
		System: articleSystemPrompt,
		User:   fmt.Sprintf(articleUserPrompt, topic),
		JSON:   true,
	}
}
