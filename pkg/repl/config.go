package repl

import "github.com/duynguyendang/maya/pkg/attach"

// Config holds configuration for the chat REPL.
type Config struct {
	// Prompt is printed before each line of input.
	Prompt string
	// MaxAttachmentMB caps the size of files added with /attach.
	MaxAttachmentMB int
	// SpeechFile is where /speak writes audio when no path is given.
	SpeechFile string
	// ShowCards prints a card per extracted file after each reply.
	ShowCards bool
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Prompt:          "tú> ",
		MaxAttachmentMB: attach.DefaultMaxSizeMB,
		SpeechFile:      "maya.mp3",
		ShowCards:       true,
	}
}
