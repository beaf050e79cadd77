package model

import (
	"fmt"
	"strings"

	"scenario-quiz/internal/domain"
)

type Subject string

const (
	SubjectMathematics     Subject = "Mathematics"
	SubjectEnglish         Subject = "English Language"
	SubjectLiterature      Subject = "Literature"
	SubjectBiology         Subject = "Biology"
	SubjectChemistry       Subject = "Chemistry"
	SubjectPhysics         Subject = "Physics"
	SubjectGeography       Subject = "Geography"
	SubjectHistory         Subject = "History"
	SubjectBusinessStudies Subject = "Business Studies"
	SubjectComputerStudies Subject = "Computer Studies"
	SubjectAgriculture     Subject = "Agriculture"
	SubjectCRE             Subject = "CRE"
)

// Subjects lists the selectable subjects in display order.
var Subjects = []Subject{
	SubjectMathematics,
	SubjectEnglish,
	SubjectLiterature,
	SubjectBiology,
	SubjectChemistry,
	SubjectPhysics,
	SubjectGeography,
	SubjectHistory,
	SubjectBusinessStudies,
	SubjectComputerStudies,
	SubjectAgriculture,
	SubjectCRE,
}

func (s Subject) Valid() bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// QuestionsPerBatch is how many scenario questions one generation asks for.
const QuestionsPerBatch = 2

// GenerationRequest is the user's selection for one generation.
type GenerationRequest struct {
	Subject    Subject    `json:"subject"`
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
}

func (r *GenerationRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	if !r.Subject.Valid() {
		return fmt.Errorf("%w: unknown subject %q", domain.ErrInvalidArgument, r.Subject)
	}
	if r.Topic == "" {
		return fmt.Errorf("%w: topic is required", domain.ErrInvalidArgument)
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", domain.ErrInvalidArgument, r.Difficulty)
	}
	return nil
}

type Task struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

type Answer struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

// GeneratedQuestion is one scenario with its tasks and sample answers.
// ImageURL stays empty until the image phase fills it, and stays empty
// for good if that item's image failed.
type GeneratedQuestion struct {
	Scenario string   `json:"scenario"`
	Tasks    []Task   `json:"tasks"`
	Answers  []Answer `json:"answers"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// Validate enforces unique task ids and a 1:1 answer per task.
func (q *GeneratedQuestion) Validate() error {
	if strings.TrimSpace(q.Scenario) == "" {
		return fmt.Errorf("%w: empty scenario", domain.ErrGenerationFailure)
	}
	if len(q.Tasks) == 0 {
		return fmt.Errorf("%w: scenario has no tasks", domain.ErrGenerationFailure)
	}
	tasks := make(map[string]struct{}, len(q.Tasks))
	for _, t := range q.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task without id", domain.ErrGenerationFailure)
		}
		if _, dup := tasks[t.ID]; dup {
			return fmt.Errorf("%w: duplicate task id %q", domain.ErrGenerationFailure, t.ID)
		}
		tasks[t.ID] = struct{}{}
	}
	if len(q.Answers) != len(q.Tasks) {
		return fmt.Errorf("%w: %d answers for %d tasks", domain.ErrGenerationFailure, len(q.Answers), len(q.Tasks))
	}
	seen := make(map[string]struct{}, len(q.Answers))
	for _, a := range q.Answers {
		if _, ok := tasks[a.ID]; !ok {
			return fmt.Errorf("%w: answer %q has no matching task", domain.ErrGenerationFailure, a.ID)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: duplicate answer id %q", domain.ErrGenerationFailure, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

// ValidateQuestions checks a whole generator result.
func ValidateQuestions(qs []GeneratedQuestion) error {
	if len(qs) == 0 {
		return fmt.Errorf("%w: no questions returned", domain.ErrGenerationFailure)
	}
	for i := range qs {
		if err := qs[i].Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}
