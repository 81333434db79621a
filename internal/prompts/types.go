package prompts

// PromptID identifies a prompt template by its path under templates/.
type PromptID string

const (
	PlannerAdvisory    PromptID = "planner/advisory"
	ClarifierQuestions PromptID = "clarifier/questions"
	CoderGenerate      PromptID = "coder/generate"
)

// AdvisoryData feeds PlannerAdvisory.
type AdvisoryData struct {
	TaskName    string
	Description string
	// Reason is the heuristic planner's reason for flagging the task.
	Reason string
}

// QuestionsData feeds ClarifierQuestions.
type QuestionsData struct {
	TaskName     string
	Description  string
	Signals      []string
	MaxQuestions int
}

// QAPair is one clarification shown to the code generator.
type QAPair struct {
	Question string
	Answer   string
}

// GenerateData feeds CoderGenerate.
type GenerateData struct {
	TaskName       string
	Description    string
	Function       string
	Signature      string
	Clarifications []QAPair
}
