package ui

import (
	"errors"
	"testing"
)

// fakePrompter replays scripted answers without a terminal.
type fakePrompter struct {
	selections []string
	inputs     []string
	err        error
}

func (f *fakePrompter) Select(message string, options []string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.selections) == 0 {
		return "", errors.New("no scripted selection")
	}
	choice := f.selections[0]
	f.selections = f.selections[1:]
	return choice, nil
}

func (f *fakePrompter) Input(message, defaultValue string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.inputs) == 0 {
		return defaultValue, nil
	}
	value := f.inputs[0]
	f.inputs = f.inputs[1:]
	return value, nil
}

func TestConfirmCommandActions(t *testing.T) {
	cases := []struct {
		choice string
		want   Action
	}{
		{"Run it", ActionRun},
		{"Edit it", ActionEdit},
		{"Copy to clipboard", ActionCopy},
		{"Cancel", ActionCancel},
	}

	for _, tc := range cases {
		p := &fakePrompter{selections: []string{tc.choice}}
		action, err := ConfirmCommand(p, "ffmpeg -i in.mp4 out.mkv", "converts the file")
		if err != nil {
			t.Errorf("ConfirmCommand(%q) returned error: %v", tc.choice, err)
			continue
		}
		if action != tc.want {
			t.Errorf("ConfirmCommand(%q) = %v, want %v", tc.choice, action, tc.want)
		}
	}
}

func TestConfirmCommandPromptFailure(t *testing.T) {
	p := &fakePrompter{err: errors.New("terminal gone")}

	action, err := ConfirmCommand(p, "ffmpeg", "")
	if err == nil {
		t.Fatal("expected error from failing prompter")
	}
	if action != ActionCancel {
		t.Errorf("action = %v, want ActionCancel on failure", action)
	}
}

func TestPromptForEdit(t *testing.T) {
	p := &fakePrompter{inputs: []string{"ffmpeg -i in.mp4 -vcodec libx265 out.mp4"}}

	edited, err := PromptForEdit(p, "ffmpeg -i in.mp4 out.mp4")
	if err != nil {
		t.Fatalf("PromptForEdit returned error: %v", err)
	}
	if edited != "ffmpeg -i in.mp4 -vcodec libx265 out.mp4" {
		t.Errorf("edited = %q", edited)
	}
}

func TestPromptForEditKeepsDefault(t *testing.T) {
	// No scripted input means the user accepted the pre-filled value.
	p := &fakePrompter{}

	edited, err := PromptForEdit(p, "ffmpeg -i in.mp4 out.mp4")
	if err != nil {
		t.Fatalf("PromptForEdit returned error: %v", err)
	}
	if edited != "ffmpeg -i in.mp4 out.mp4" {
		t.Errorf("edited = %q, want the original command", edited)
	}
}

func TestReadInstruction(t *testing.T) {
	p := &fakePrompter{inputs: []string{"convert video.mp4 to a gif"}}

	instruction, err := ReadInstruction(p)
	if err != nil {
		t.Fatalf("ReadInstruction returned error: %v", err)
	}
	if instruction != "convert video.mp4 to a gif" {
		t.Errorf("instruction = %q", instruction)
	}
}
