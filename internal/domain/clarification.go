package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Signal names an ambiguity the planner can detect.
type Signal string

const (
	SignalNegativeInput Signal = "negative_input"
	SignalQuoting       Signal = "quoting"
	SignalVagueTerms    Signal = "vague_terms"
)

// String implements fmt.Stringer.
func (s Signal) String() string {
	return string(s)
}

// PlannerDecision is the planner's verdict for a task. Reason is empty
// exactly when NeedsClarification is false.
type PlannerDecision struct {
	NeedsClarification bool   `json:"needs_clarification"`
	Reason             string `json:"reason"`

	// Signals lists every matched signal in evaluation order. Only the first
	// contributes to Reason.
	Signals []Signal `json:"-"`
}

// Provenance records where clarification answers came from.
type Provenance string

const (
	ProvenanceMock  Provenance = "mock"
	ProvenanceLLM   Provenance = "llm"
	ProvenanceUser  Provenance = "user"
	ProvenanceCache Provenance = "cache"
)

// QA is one answered clarification question.
type QA struct {
	Question string
	Answer   string
}

// Clarifications is an ordered question to answer mapping. It encodes as a
// JSON object whose key order matches insertion order.
type Clarifications []QA

// Len returns the number of answered questions.
func (c Clarifications) Len() int {
	return len(c)
}

// Get returns the answer for question.
func (c Clarifications) Get(question string) (string, bool) {
	for _, qa := range c {
		if qa.Question == question {
			return qa.Answer, true
		}
	}
	return "", false
}

// Set overwrites an existing answer in place or appends a new question.
func (c *Clarifications) Set(question, answer string) {
	for i := range *c {
		if (*c)[i].Question == question {
			(*c)[i].Answer = answer
			return
		}
	}
	*c = append(*c, QA{Question: question, Answer: answer})
}

// Merge applies every entry of other on top of c.
func (c *Clarifications) Merge(other Clarifications) {
	for _, qa := range other {
		c.Set(qa.Question, qa.Answer)
	}
}

// Clone returns an independent copy.
func (c Clarifications) Clone() Clarifications {
	if c == nil {
		return nil
	}
	out := make(Clarifications, len(c))
	copy(out, c)
	return out
}

// MarshalJSON encodes the mapping as an ordered JSON object.
func (c Clarifications) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, qa := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(qa.Question)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(qa.Answer)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (c *Clarifications) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("clarifications: expected object, got %v", tok)
	}

	out := Clarifications{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("clarifications: expected string key, got %v", keyTok)
		}
		var answer string
		if err := dec.Decode(&answer); err != nil {
			return fmt.Errorf("clarifications: answer for %q: %w", key, err)
		}
		out.Set(key, answer)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// ClarificationRecord is the knowledge base entry for one task description.
type ClarificationRecord struct {
	QA                 Clarifications `json:"q_and_a"`
	Provenance         Provenance     `json:"provenance"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DescriptionPreview string         `json:"description_preview"`

	// Origin keeps the stored provenance when a record is served from cache.
	Origin Provenance `json:"-"`
}

// IsEmpty reports whether the record carries no answers.
func (r ClarificationRecord) IsEmpty() bool {
	return r.QA.Len() == 0
}
