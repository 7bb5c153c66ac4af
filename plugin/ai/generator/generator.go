// Package generator turns source text into flashcard drafts through a chat
// model, with tolerant parsing of the model's JSON output.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/plugin/ai"
)

const (
	// MaxSourceLength bounds the text sent to the model.
	MaxSourceLength = 20000
	// MaxCards bounds how many cards one request may ask for.
	MaxCards = 50
	// DefaultCards is used when the request does not say how many.
	DefaultCards = 10

	maxFrontLength = 1000
	maxBackLength  = 4000
)

const systemPrompt = `You are a flashcard author. Given source material, produce concise question/answer flashcards for spaced repetition.

Rules:
- Each card tests exactly one fact or concept.
- The front is a question or cue; the back is the minimal complete answer.
- Do not copy long passages verbatim; rephrase.
- Answer with a JSON array only, no commentary: [{"front": "...", "back": "...", "tags": ["..."]}]`

// Request describes one generation call.
type Request struct {
	SourceText string
	CardCount  int
	Language   string
}

// Card is one generated flashcard draft.
type Card struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
}

// Result is the outcome of one generation call.
type Result struct {
	Cards            []Card
	PromptTokens     int
	CompletionTokens int
}

// Generator produces flashcard drafts from source text.
type Generator struct {
	provider *ai.Provider
}

// New creates a generator backed by the given provider.
func New(provider *ai.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate asks the chat model for flashcards and parses its answer.
func (g *Generator) Generate(ctx context.Context, request *Request) (*Result, error) {
	if err := validateRequest(request); err != nil {
		return nil, err
	}

	chatResult, err := g.provider.Chat(ctx, []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildUserPrompt(request)},
	})
	if err != nil {
		return nil, err
	}

	cards, err := ParseCards(chatResult.Content)
	if err != nil {
		return nil, err
	}
	if len(cards) > request.CardCount {
		cards = cards[:request.CardCount]
	}

	return &Result{
		Cards:            cards,
		PromptTokens:     chatResult.PromptTokens,
		CompletionTokens: chatResult.CompletionTokens,
	}, nil
}

func validateRequest(request *Request) error {
	if request == nil {
		return errors.New("request cannot be nil")
	}
	if strings.TrimSpace(request.SourceText) == "" {
		return errors.New("source text cannot be empty")
	}
	if len(request.SourceText) > MaxSourceLength {
		return errors.Errorf("source text exceeds %d characters", MaxSourceLength)
	}
	if request.CardCount == 0 {
		request.CardCount = DefaultCards
	}
	if request.CardCount < 1 || request.CardCount > MaxCards {
		return errors.Errorf("card count must be between 1 and %d", MaxCards)
	}
	return nil
}

func buildUserPrompt(request *Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create up to %d flashcards from the following material.", request.CardCount)
	if request.Language != "" {
		fmt.Fprintf(&sb, " Write the cards in %s.", request.Language)
	}
	sb.WriteString("\n\n")
	sb.WriteString(request.SourceText)
	return sb.String()
}

// ParseCards extracts flashcards from a model answer. Models wrap JSON in
// fenced code blocks or prose more often than not, so parsing scans for
// the outermost JSON array rather than requiring a clean document.
func ParseCards(content string) ([]Card, error) {
	raw := extractJSONArray(content)
	if raw == "" {
		return nil, errors.New("no JSON array found in model response")
	}

	var cards []Card
	if err := json.Unmarshal([]byte(raw), &cards); err != nil {
		// Some models emit a single object instead of a one-element array.
		var single Card
		if errSingle := json.Unmarshal([]byte(raw), &single); errSingle != nil {
			return nil, errors.Wrap(err, "failed to parse model response")
		}
		cards = []Card{single}
	}

	valid := make([]Card, 0, len(cards))
	for _, card := range cards {
		card.Front = strings.TrimSpace(card.Front)
		card.Back = strings.TrimSpace(card.Back)
		if card.Front == "" || card.Back == "" {
			continue
		}
		if len(card.Front) > maxFrontLength {
			card.Front = card.Front[:maxFrontLength]
		}
		if len(card.Back) > maxBackLength {
			card.Back = card.Back[:maxBackLength]
		}
		card.Tags = normalizeTags(card.Tags)
		valid = append(valid, card)
	}
	if len(valid) == 0 {
		return nil, errors.New("model response contained no usable cards")
	}
	return valid, nil
}

// extractJSONArray returns the outermost JSON array in the content,
// stripping fenced code blocks along the way.
func extractJSONArray(content string) string {
	content = strings.TrimSpace(content)

	// Strip a ```json ... ``` fence if present.
	if idx := strings.Index(content, "```"); idx >= 0 {
		rest := content[idx+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			content = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.IndexByte(content, '[')
	if start < 0 {
		// Fall back to a lone object.
		objStart := strings.IndexByte(content, '{')
		objEnd := strings.LastIndexByte(content, '}')
		if objStart >= 0 && objEnd > objStart {
			return content[objStart : objEnd+1]
		}
		return ""
	}

	// Walk to the matching bracket so trailing prose does not break the
	// parse.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}
	return ""
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
