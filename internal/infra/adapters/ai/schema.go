package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
)

const questionsSchemaURL = "schema://generated-questions.json"

// questionsSchema describes the array every text provider must return.
const questionsSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["scenario", "tasks", "answers"],
    "properties": {
      "scenario": {"type": "string", "minLength": 1},
      "tasks": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "required": ["id", "question"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "question": {"type": "string"}
          }
        }
      },
      "answers": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "answer"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "answer": {"type": "string"}
          }
        }
      }
    }
  }
}`

var fenceRe = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func questionsValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(questionsSchema), &def); err != nil {
			schemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(questionsSchemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(questionsSchemaURL)
	})
	return compiledSchema, schemaErr
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[2])
	}
	return s
}

// parseQuestions turns raw model output into validated questions. A top-level
// object is accepted when it carries the array under "questions".
func parseQuestions(raw string) ([]model.GeneratedQuestion, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: the model returned an empty response", domain.ErrGenerationFailure)
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("%w: the response format was invalid: %w", domain.ErrGenerationFailure, err)
	}
	if obj, ok := parsed.(map[string]any); ok {
		if inner, ok := obj["questions"]; ok {
			parsed = inner
		}
	}

	schema, err := questionsValidator()
	if err != nil {
		return nil, fmt.Errorf("%w: compile schema: %w", domain.ErrGenerationFailure, err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: the response did not match the question format: %w", domain.ErrGenerationFailure, err)
	}

	normalized, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	var out []model.GeneratedQuestion
	if err := json.Unmarshal(normalized, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}
	if err := model.ValidateQuestions(out); err != nil {
		return nil, err
	}
	// images are attached later, never by the text model
	for i := range out {
		out[i].ImageURL = ""
	}
	return out, nil
}
