package ai

import (
	"fmt"
	"strings"
)

// BuildContext summarizes current work from task texts, newest first.
func BuildContext(texts []string) string {
	if len(texts) == 0 {
		return contextNoTasks
	}
	if len(texts) > MaxContextTasks {
		texts = texts[:MaxContextTasks]
	}

	var b strings.Builder
	b.WriteString(contextLeadIn)
	b.WriteString(strings.Join(texts, ", "))
	return b.String()
}

func BuildSuggestionPrompt(context string) string {
	return fmt.Sprintf(suggestPromptTemplate, context)
}
