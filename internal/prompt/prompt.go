package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyInstruction is returned when the user request is empty or
// whitespace-only. It is checked before any network call is made.
var ErrEmptyInstruction = errors.New("instruction is empty")

// maxContextFiles caps how many directory entries are embedded in the
// prompt so a cluttered directory doesn't blow up the request.
const maxContextFiles = 20

// Message is a single chat message in an OpenAI-compatible payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the payload handed to the completion client. It is built
// once per invocation and discarded after the API call.
type Request struct {
	Messages []Message
}

// FileInfo describes one file in the working directory context.
type FileInfo struct {
	Name string
	Size int64
}

const systemPrompt = `You are an expert FFmpeg command generator.
Your task is to translate the user's natural language request into a valid, efficient FFmpeg command.

You must output your response in valid JSON format with the following structure:
{
    "command": "the full ffmpeg command here",
    "explanation": "a brief explanation of what the command does"
}

- Ensure the command is safe and correct.
- Do not include markdown formatting (like ` + "```json" + `) around the output, just the raw JSON string.
- If the user's request is ambiguous, make a reasonable assumption and note it in the explanation.
- Assume standard input/output filenames if none are provided (e.g., input.mp4, output.mp4), or placeholders like <input_file>.`

// Build turns a natural language instruction and optional directory
// context into a chat request. Rejects empty instructions.
func Build(instruction string, files []FileInfo) (*Request, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrEmptyInstruction
	}

	system := systemPrompt
	if len(files) > 0 {
		var sb strings.Builder
		sb.WriteString("\n\nMedia files in the current directory:\n")
		for _, f := range files {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", f.Name, formatSize(f.Size)))
		}
		sb.WriteString("Prefer these filenames over placeholders when they match the request.")
		system += sb.String()
	}

	return &Request{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: strings.TrimSpace(instruction)},
		},
	}, nil
}

// mediaExtensions are the file types worth mentioning to the model.
var mediaExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".avi": true, ".webm": true,
	".mp3": true, ".wav": true, ".flac": true, ".aac": true, ".ogg": true,
	".m4a": true, ".gif": true, ".png": true, ".jpg": true, ".jpeg": true,
}

// DirContext lists media files in dir for inclusion in the prompt.
// Best effort: any filesystem error yields an empty context.
func DirContext(dir string) []FileInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !mediaExtensions[ext] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: entry.Name(), Size: info.Size()})
		if len(files) == maxContextFiles {
			break
		}
	}

	return files
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
