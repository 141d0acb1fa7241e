// Package prompts holds the text sent to the generative model and the fixed
// user-facing strings around it. The catalogue is embedded in the binary and
// may be replaced at runtime by a YAML file with the same shape.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var embeddedCatalogue []byte

type rawCatalogue struct {
	Chat struct {
		System string `yaml:"system"`
		Turn   string `yaml:"turn"`
	} `yaml:"chat"`
	Plan    string `yaml:"plan"`
	Replies struct {
		MissingKey  string `yaml:"missing_key"`
		Unavailable string `yaml:"unavailable"`
	} `yaml:"replies"`
	Mail struct {
		Subject string `yaml:"subject"`
		Body    string `yaml:"body"`
	} `yaml:"mail"`
	PDF struct {
		Title    string `yaml:"title"`
		Filename string `yaml:"filename"`
	} `yaml:"pdf"`
}

// Catalogue is a parsed, ready-to-render prompt set.
type Catalogue struct {
	DefaultSystem    string
	ReplyMissingKey  string
	ReplyUnavailable string
	MailSubject      string
	PDFTitle         string
	PDFFilename      string

	chatTurn *template.Template
	plan     *template.Template
	mailBody *template.Template
}

// PlanInput is the business idea description rendered into the plan prompt.
type PlanInput struct {
	Idea       string
	Capital    string
	Skills     string
	Strategy   string
	Management string
	Language   string
}

// Load parses the catalogue at path, or the embedded one when path is empty.
func Load(path string) (*Catalogue, error) {
	data := embeddedCatalogue
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompts file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse builds a Catalogue from YAML.
func Parse(data []byte) (*Catalogue, error) {
	var raw rawCatalogue
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if strings.TrimSpace(raw.Plan) == "" || strings.TrimSpace(raw.Chat.Turn) == "" {
		return nil, fmt.Errorf("parse prompts: chat.turn and plan are required")
	}

	c := &Catalogue{
		DefaultSystem:    strings.TrimSpace(raw.Chat.System),
		ReplyMissingKey:  orDefault(raw.Replies.MissingKey, "API Key Missing"),
		ReplyUnavailable: orDefault(raw.Replies.Unavailable, "Üzgünüm, şu an yanıt veremiyorum."),
		MailSubject:      orDefault(raw.Mail.Subject, "Verification code"),
		PDFTitle:         orDefault(raw.PDF.Title, "Business Plan"),
		PDFFilename:      orDefault(raw.PDF.Filename, "plan.pdf"),
	}
	var err error
	if c.chatTurn, err = template.New("chat.turn").Option("missingkey=error").Parse(raw.Chat.Turn); err != nil {
		return nil, fmt.Errorf("chat.turn: %w", err)
	}
	if c.plan, err = template.New("plan").Option("missingkey=error").Parse(raw.Plan); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	if c.mailBody, err = template.New("mail.body").Parse(orDefault(raw.Mail.Body, "{{.Code}}")); err != nil {
		return nil, fmt.Errorf("mail.body: %w", err)
	}
	return c, nil
}

// ChatPrompt renders a chat turn. An empty system prompt falls back to the
// catalogue default.
func (c *Catalogue) ChatPrompt(system, message string) (string, error) {
	if strings.TrimSpace(system) == "" {
		system = c.DefaultSystem
	}
	return render(c.chatTurn, struct{ System, Message string }{system, message})
}

// PlanPrompt renders the business plan prompt.
func (c *Catalogue) PlanPrompt(in PlanInput) (string, error) {
	return render(c.plan, in)
}

// MailBody renders the verification mail text.
func (c *Catalogue) MailBody(code string) (string, error) {
	return render(c.mailBody, struct{ Code string }{code})
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return b.String(), nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
