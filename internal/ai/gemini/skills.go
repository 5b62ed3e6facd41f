package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength     = 200
	defaultMaxSkills        = 30
	maxUserInstructionRunes = 500
)

// Extraction is what the model found in a job description.
type Extraction struct {
	Skills []string
	Roles  []string
	Raw    string
}

// SkillExtractor asks Gemini for the skills of a free-text job description.
type SkillExtractor struct {
	generator    contentGenerator
	logger       *zap.Logger
	maxSkills    int
	maxLogLen    int
	instructions string
}

func NewSkillExtractor(generator contentGenerator, maxSkills, maxLogLength int, l *zap.Logger) *SkillExtractor {
	if maxSkills <= 0 {
		maxSkills = defaultMaxSkills
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &SkillExtractor{
		generator: generator,
		logger:    logger.WithFields(l),
		maxSkills: maxSkills,
		maxLogLen: maxLogLength,
	}
}

// SetInstructions adds advisory user instructions to the system prompt.
func (e *SkillExtractor) SetInstructions(instructions string) {
	e.instructions = instructions
}

func (e *SkillExtractor) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	extraction, err := e.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	return extraction.Skills, nil
}

func (e *SkillExtractor) ExtractSkillsAndRoles(ctx context.Context, text string) ([]string, []string, error) {
	extraction, err := e.Extract(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	return extraction.Skills, extraction.Roles, nil
}

// Extract returns the skills and roles Gemini finds in text. Skills are capped
// at the configured maximum.
func (e *SkillExtractor) Extract(ctx context.Context, text string) (*Extraction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("job description text is required")
	}

	system := e.buildPrompt()
	message := "[Job description]\n" + text

	e.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(system)+utf8.RuneCountInString(message)),
		zap.String("message_preview", logger.TruncateForLog(message, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	extraction, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if len(extraction.Skills) > e.maxSkills {
		e.logger.Debug("capping extracted skills",
			zap.Int("found", len(extraction.Skills)),
			zap.Int("limit", e.maxSkills),
		)
		extraction.Skills = extraction.Skills[:e.maxSkills]
	}

	extraction.Raw = raw
	return extraction, nil
}

func (e *SkillExtractor) buildPrompt() string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract at most {{MAX_SKILLS}} skills and the roles of the job description as JSON {\"skills\": [], \"roles\": []}.\n{{USER_INSTRUCTIONS}}"
	}
	prompt := strings.ReplaceAll(template, "{{MAX_SKILLS}}", strconv.Itoa(e.maxSkills))
	prompt = strings.ReplaceAll(prompt, "{{USER_INSTRUCTIONS}}", instructionsBlock(e.instructions))
	return prompt
}

// instructionsBlock renders user instructions as an indented list. Square
// brackets are replaced so the text cannot open a new prompt section.
func instructionsBlock(raw string) string {
	raw = strings.NewReplacer("[", "(", "]", ")").Replace(raw)

	if runes := []rune(strings.TrimSpace(raw)); len(runes) > maxUserInstructionRunes {
		raw = string(runes[:maxUserInstructionRunes])
	}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.FieldsFunc(line, unicode.IsSpace), " ")
		if line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (*Extraction, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &Extraction{
		Skills: coerceList(data["skills"]),
		Roles:  coerceList(data["roles"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// coerceList accepts a JSON array or a comma separated string. Blank and
// repeated items are dropped.
func coerceList(v any) []string {
	var items []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			items = append(items, coerceString(item))
		}
	case string:
		items = strings.Split(val, ",")
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
