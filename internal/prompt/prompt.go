// Package prompt asks the user questions on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"
)

// ErrNonInteractive is returned when a question has no default answer and prompts are disabled.
var ErrNonInteractive = errors.New("input required but prompts are disabled")

// ErrCancelled is returned when the user interrupts a prompt.
var ErrCancelled = errors.New("prompt cancelled")

// Prompter asks single questions.
type Prompter interface {
	// Select returns the index of the chosen option.
	Select(message string, options []string) (int, error)

	// MultiSelect returns the indexes of the chosen options. defaults are preselected.
	MultiSelect(message string, options []string, defaults []int) ([]int, error)

	// Input returns free text, or defaultValue when nothing is entered.
	Input(message, defaultValue string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(message string, defaultValue bool) (bool, error)
}

// Interactive reports whether stdin and stdout are terminals and PLEXUS_NO_PROMPT is unset.
func Interactive() bool {
	if os.Getenv("PLEXUS_NO_PROMPT") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) // #nosec G115 -- file descriptors fit in int
}

// New returns a survey prompter when the session is interactive and assumeDefaults is false,
// otherwise a prompter that answers with defaults.
func New(assumeDefaults bool) Prompter {
	if assumeDefaults || !Interactive() {
		return Defaults{}
	}
	return &Survey{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
}

// Survey prompts on the terminal.
type Survey struct {
	in     *os.File
	out    *os.File
	errOut *os.File
}

// Select implements Prompter.
func (s *Survey) Select(message string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("no options provided")
	}
	var index int
	q := &survey.Select{Message: message, Options: options, PageSize: 12}
	if err := s.ask(q, &index); err != nil {
		return -1, err
	}
	return index, nil
}

// MultiSelect implements Prompter.
func (s *Survey) MultiSelect(message string, options []string, defaults []int) ([]int, error) {
	if len(options) == 0 {
		return nil, errors.New("no options provided")
	}
	preselected := make([]string, 0, len(defaults))
	for _, i := range defaults {
		preselected = append(preselected, options[i])
	}
	var indexes []int
	q := &survey.MultiSelect{Message: message, Options: options, Default: preselected, PageSize: 12}
	if err := s.ask(q, &indexes); err != nil {
		return nil, err
	}
	return indexes, nil
}

// Input implements Prompter.
func (s *Survey) Input(message, defaultValue string) (string, error) {
	var answer string
	if err := s.ask(&survey.Input{Message: message, Default: defaultValue}, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

// Confirm implements Prompter.
func (s *Survey) Confirm(message string, defaultValue bool) (bool, error) {
	var answer bool
	if err := s.ask(&survey.Confirm{Message: message, Default: defaultValue}, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

func (s *Survey) ask(q survey.Prompt, answer any) error {
	err := survey.AskOne(q, answer, survey.WithStdio(s.in, s.out, s.errOut))
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCancelled
	}
	if err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// Defaults answers every question with its default. A choice between several
// options has no default and fails with ErrNonInteractive.
type Defaults struct{}

// Select implements Prompter.
func (Defaults) Select(message string, _ []string) (int, error) {
	return -1, fmt.Errorf("%s: %w", message, ErrNonInteractive)
}

// MultiSelect implements Prompter.
func (Defaults) MultiSelect(_ string, _ []string, defaults []int) ([]int, error) {
	return slices.Clone(defaults), nil
}

// Input implements Prompter.
func (Defaults) Input(_, defaultValue string) (string, error) {
	return defaultValue, nil
}

// Confirm implements Prompter.
func (Defaults) Confirm(_ string, defaultValue bool) (bool, error) {
	return defaultValue, nil
}

// Scripted replays fixed answers. Tests use it in place of a terminal.
type Scripted struct {
	Selections []int
	Multi      [][]int
	Inputs     []string
	Confirms   []bool

	// Asked records every message in order.
	Asked []string
}

// Select implements Prompter.
func (s *Scripted) Select(message string, options []string) (int, error) {
	s.Asked = append(s.Asked, message)
	if len(s.Selections) == 0 {
		return -1, fmt.Errorf("%s: %w", message, ErrNonInteractive)
	}
	i := s.Selections[0]
	s.Selections = s.Selections[1:]
	if i < 0 || i >= len(options) {
		return -1, fmt.Errorf("selection %d out of range", i)
	}
	return i, nil
}

// MultiSelect implements Prompter.
func (s *Scripted) MultiSelect(message string, _ []string, defaults []int) ([]int, error) {
	s.Asked = append(s.Asked, message)
	if len(s.Multi) == 0 {
		return slices.Clone(defaults), nil
	}
	answer := s.Multi[0]
	s.Multi = s.Multi[1:]
	return answer, nil
}

// Input implements Prompter.
func (s *Scripted) Input(message, defaultValue string) (string, error) {
	s.Asked = append(s.Asked, message)
	if len(s.Inputs) == 0 {
		return defaultValue, nil
	}
	answer := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	return answer, nil
}

// Confirm implements Prompter.
func (s *Scripted) Confirm(message string, defaultValue bool) (bool, error) {
	s.Asked = append(s.Asked, message)
	if len(s.Confirms) == 0 {
		return defaultValue, nil
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer, nil
}
