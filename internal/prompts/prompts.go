package prompts

import (
	"bytes"
	"fmt"
	"strings"
)

// Render executes a prompt template. The data type must match the prompt:
//
//	prompt, err := prompts.Render(prompts.ClarifierQuestions, prompts.QuestionsData{
//	    TaskName:     task.Name,
//	    Description:  task.Description,
//	    MaxQuestions: 3,
//	})
func Render(id PromptID, data any) (string, error) {
	if err := ValidateData(id, data); err != nil {
		return "", err
	}

	tmpl, err := globalRegistry.get(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: prompt %s: %w", ErrTemplateExecution, id, err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// List returns all registered prompt IDs in sorted order.
func List() []PromptID {
	return globalRegistry.list()
}

// Source returns the raw template text for a prompt.
func Source(id PromptID) (string, error) {
	src, ok := globalRegistry.sources[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return src, nil
}

// ValidateData checks that data is the struct the prompt expects.
func ValidateData(id PromptID, data any) error {
	var ok bool
	switch id {
	case PlannerAdvisory:
		_, ok = data.(AdvisoryData)
	case ClarifierQuestions:
		_, ok = data.(QuestionsData)
	case CoderGenerate:
		_, ok = data.(GenerateData)
	default:
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: prompt %s got %T", ErrInvalidData, id, data)
	}
	return nil
}
