package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// StageID identifies a stage within a pipeline and keys its output in the
// pipeline context.
type StageID string

// String returns the string representation.
func (id StageID) String() string {
	return string(id)
}

// stageIDPattern keeps ids usable as template field names ({{.Inputs.audit}}).
var stageIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Stage is the static descriptor of one unit of pipeline work.
//
// PromptTemplate is a text/template rendered with:
//
//	.Document  the source excerpt, cut to TruncationLimit characters
//	.Profile   the business profile text
//	.Inputs    outputs of the stages listed in Requires, keyed by id
type Stage struct {
	ID             StageID
	Role           string
	Goal           string
	Backstory      string
	PromptTemplate string
	ExpectedOutput string

	// Requires lists the stages whose outputs this stage reads.
	// Each must run earlier in the pipeline.
	Requires []StageID

	// TruncationLimit bounds the source excerpt in characters.
	// Zero selects DefaultTruncationLimit.
	TruncationLimit int
}

// Prompt is the assembled request for one stage.
type Prompt struct {
	// System carries the stage persona: role, backstory and goal.
	System string

	// User carries the rendered task and the expected output.
	User string
}

// promptData is the value templates are executed against.
type promptData struct {
	Document string
	Profile  string
	Inputs   map[string]string
}

// Limit returns the effective truncation limit of the stage.
func (s *Stage) Limit() int {
	if s.TruncationLimit <= 0 {
		return DefaultTruncationLimit
	}
	return s.TruncationLimit
}

// Validate checks the descriptor in isolation: id format, non-empty
// template, template syntax, and that the template only reads declared inputs.
// Ordering of dependencies is checked by the orchestrator.
//
// Errors name the problem, not the stage; callers wrap them with the stage id.
func (s *Stage) Validate() error {
	if !stageIDPattern.MatchString(string(s.ID)) {
		return fmt.Errorf("invalid stage id %q: must match %s", s.ID, stageIDPattern)
	}
	if strings.TrimSpace(s.PromptTemplate) == "" {
		return errors.New("prompt template is empty")
	}
	if s.TruncationLimit < 0 {
		return errors.New("truncation limit must not be negative")
	}
	tmpl, err := s.parse()
	if err != nil {
		return err
	}

	declared := make(map[string]bool, len(s.Requires))
	for _, dep := range s.Requires {
		if dep == s.ID {
			return errors.New("cannot require itself")
		}
		declared[string(dep)] = true
	}

	// Every reference is checked, including those in branches a dry run
	// would not take.
	refs, err := inputRefs(tmpl)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if !declared[ref] {
			return fmt.Errorf("template reads an undeclared input %q", ref)
		}
	}

	// Dry run with placeholder inputs catches the remaining execution
	// errors, such as unknown fields.
	inputs := make(map[string]string, len(declared))
	for id := range declared {
		inputs[id] = ""
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, promptData{Inputs: inputs}); err != nil {
		return fmt.Errorf("template cannot be rendered: %w", err)
	}
	return nil
}

// BuildPrompt assembles the prompt for this stage. It is pure: the same
// view, document text and profile always produce the same prompt.
func (s *Stage) BuildPrompt(view ContextView, documentText, profileText string) (Prompt, error) {
	tmpl, err := s.parse()
	if err != nil {
		return Prompt{}, err
	}

	inputs := make(map[string]string, len(s.Requires))
	for _, dep := range s.Requires {
		out, ok := view.Get(dep)
		if !ok {
			return Prompt{}, fmt.Errorf("input %s not in context: %w", dep, ErrDependency)
		}
		inputs[string(dep)] = out
	}

	var body strings.Builder
	data := promptData{
		Document: Truncate(documentText, s.Limit()),
		Profile:  profileText,
		Inputs:   inputs,
	}
	if err := tmpl.Execute(&body, data); err != nil {
		return Prompt{}, fmt.Errorf("render prompt: %w", err)
	}

	user := strings.TrimSpace(body.String())
	if s.ExpectedOutput != "" {
		user += "\n\nExpected output: " + s.ExpectedOutput
	}

	return Prompt{
		System: s.persona(),
		User:   user,
	}, nil
}

func (s *Stage) parse() (*template.Template, error) {
	tmpl, err := template.New(string(s.ID)).Option("missingkey=error").Parse(s.PromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return tmpl, nil
}

func (s *Stage) persona() string {
	var sb strings.Builder
	if s.Role != "" {
		fmt.Fprintf(&sb, "You are a %s.", s.Role)
	}
	if s.Backstory != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(s.Backstory)
	}
	if s.Goal != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Your goal: " + s.Goal)
	}
	return sb.String()
}
