package ai

const (
	contextLeadIn  = "Currently working on: "
	contextNoTasks = "No tasks yet, suggest some general productivity goals."

	suggestPromptTemplate = `Suggest 3-5 productive tasks or subtasks based on the following context: "%s". Make them actionable and concise.`
)

// MaxContextTasks caps how many task texts go into the context summary.
const MaxContextTasks = 5
