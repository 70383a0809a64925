package ui

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
)

// Action represents the user's choice at the confirmation gate
type Action int

const (
	ActionRun Action = iota
	ActionEdit
	ActionCopy
	ActionCancel
)

// Prompter abstracts interactive console input so the confirmation
// flow can be tested without a real terminal.
type Prompter interface {
	// Select shows a menu and returns the chosen option.
	Select(message string, options []string) (string, error)

	// Input asks for a free-text line, pre-filled with defaultValue.
	Input(message, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter on top of survey/v2.
type SurveyPrompter struct{}

// NewSurveyPrompter creates the terminal-backed prompter.
func NewSurveyPrompter() *SurveyPrompter {
	return &SurveyPrompter{}
}

func (s *SurveyPrompter) Select(message string, options []string) (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}

	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}

	return choice, nil
}

func (s *SurveyPrompter) Input(message, defaultValue string) (string, error) {
	var value string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}

	if err := survey.AskOne(prompt, &value); err != nil {
		return "", err
	}

	return value, nil
}

// ShowCommand displays the generated command and its explanation
func ShowCommand(command, explanation string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Println("\nGenerated command:")
	fmt.Printf("  %s\n", command)
	if explanation != "" {
		gray := color.New(color.FgHiBlack)
		gray.Printf("  %s\n", explanation)
	}
	fmt.Println()
}

// ConfirmCommand shows the command and asks the user what to do
func ConfirmCommand(p Prompter, command, explanation string) (Action, error) {
	ShowCommand(command, explanation)

	choice, err := p.Select("What would you like to do?", []string{
		"Run it",
		"Edit it",
		"Copy to clipboard",
		"Cancel",
	})
	if err != nil {
		return ActionCancel, err
	}

	switch choice {
	case "Run it":
		return ActionRun, nil
	case "Edit it":
		return ActionEdit, nil
	case "Copy to clipboard":
		return ActionCopy, nil
	default:
		return ActionCancel, nil
	}
}

// PromptForEdit lets the user replace the command before execution.
// The current command is the editable default.
func PromptForEdit(p Prompter, current string) (string, error) {
	edited, err := p.Input("Edit the command:", current)
	if err != nil {
		return "", err
	}
	return edited, nil
}

// ReadInstruction asks for the next natural language request in
// interactive mode.
func ReadInstruction(p Prompter) (string, error) {
	return p.Input(">>", "")
}

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}
