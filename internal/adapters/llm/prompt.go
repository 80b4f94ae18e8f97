package llm

import (
	"fmt"

	"github.com/PabloGalante/reflexion-agent/internal/domain"
)

const sentimentInstructions = `
You will read one reflection from a personal journal.
Rate the overall sentiment of the answer from positive to negative.
Pick exactly one of: Positive, Slightly Positive, Neutral, Slightly Negative, Negative.
`

const themesInstructions = `
You will read one reflection from a personal journal.
Extract a short list of general topics the answer talks about.
Keep each theme to one or two words.
`

const beliefsInstructions = `
You will read one reflection from a personal journal.
Extract a list of beliefs or blind spots that the answer assumes or contradicts.
The list should be between 1 and 5 beliefs.
Each belief has a type (Assumption, Blind Spot or Contradiction), the statement itself,
and a challenge question that helps the user understand the belief better and explore it deeper.
Create open questions and avoid yes or no questions, use questions that are practical and useful.
`

const reportInstructions = `
You will analyze a report of questions and answers from a reflection journal.
The main question will be the question that the report is related to.
The answer summary will be an overall answer of the main question of the report with the main points.
The insights will be a list of insights on the core beliefs and assumptions that the report provides.
The goal will be a short description of the goal that the report is related to based on the insights.
The tasks will be a detailed list of tasks from start to finish to achieve the goal in the shortest time possible.
The importance of the tasks will be a rating from High to Low based on the insights.
`

// languageName spells the locale out for the prompt; model output follows it.
func languageName(lang domain.Language) string {
	switch lang {
	case domain.LangES:
		return "Spanish"
	case domain.LangCZ:
		return "Czech"
	default:
		return "English"
	}
}

func withLanguage(instructions string, lang domain.Language) string {
	return instructions + fmt.Sprintf("\nWrite every generated text in %s.\n", languageName(lang))
}

func entryContent(question, answer string) string {
	return fmt.Sprintf("Question: %s\nAnswer: %s\n", question, answer)
}
