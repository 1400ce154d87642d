package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/maya.prompt
var defaultPrompt []byte

// PromptConfig holds metadata from the YAML frontmatter.
type PromptConfig struct {
	Model           string                 `yaml:"model"`
	Temperature     float32                `yaml:"temperature"`
	TopK            int32                  `yaml:"top_k"`
	TopP            float32                `yaml:"top_p"`
	MaxOutputTokens int32                  `yaml:"max_output_tokens"`
	Greeting        string                 `yaml:"greeting"`
	Input           map[string]interface{} `yaml:"input"`
}

// Prompt is a persona prompt: generation settings plus a system-instruction template.
type Prompt struct {
	Config   PromptConfig
	Template *template.Template
}

// PromptData is what the persona template can reference.
type PromptData struct {
	GitHubUser string
}

// LoadPrompt reads a .prompt file, parses frontmatter and body.
func LoadPrompt(path string) (*Prompt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	return ParsePrompt(data)
}

// DefaultPrompt returns the built-in Maya persona.
func DefaultPrompt() *Prompt {
	p, err := ParsePrompt(defaultPrompt)
	if err != nil {
		panic(fmt.Sprintf("embedded prompt: %v", err))
	}
	return p
}

func ParsePrompt(data []byte) (*Prompt, error) {
	parts := strings.SplitN(string(data), "---", 3)
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid prompt format: missing frontmatter delimiters")
	}

	frontmatter := parts[1]
	body := parts[2]

	config := PromptConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
	}
	if err := yaml.Unmarshal([]byte(frontmatter), &config); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	tmpl, err := template.New("prompt").Parse(strings.TrimSpace(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template body: %w", err)
	}

	return &Prompt{
		Config:   config,
		Template: tmpl,
	}, nil
}

// Execute applies data to the template and returns the result string.
func (p *Prompt) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := p.Template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
