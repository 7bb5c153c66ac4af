package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Card
		wantErr bool
	}{
		{
			name:    "clean array",
			content: `[{"front": "What is Go?", "back": "A programming language.", "tags": ["go"]}]`,
			want:    []Card{{Front: "What is Go?", Back: "A programming language.", Tags: []string{"go"}}},
		},
		{
			name: "fenced code block",
			content: "Here are your cards:\n```json\n" +
				`[{"front": "Q1", "back": "A1"}, {"front": "Q2", "back": "A2"}]` +
				"\n```\nLet me know if you need more.",
			want: []Card{{Front: "Q1", Back: "A1"}, {Front: "Q2", Back: "A2"}},
		},
		{
			name:    "trailing prose after array",
			content: `[{"front": "Q", "back": "A"}] I hope these help!`,
			want:    []Card{{Front: "Q", Back: "A"}},
		},
		{
			name:    "single object instead of array",
			content: `{"front": "Q", "back": "A"}`,
			want:    []Card{{Front: "Q", Back: "A"}},
		},
		{
			name:    "brackets inside strings",
			content: `[{"front": "What does [citation] mean?", "back": "A reference marker: ]"}]`,
			want:    []Card{{Front: "What does [citation] mean?", Back: "A reference marker: ]"}},
		},
		{
			name:    "blank cards filtered out",
			content: `[{"front": "", "back": "orphan"}, {"front": "Q", "back": "A"}, {"front": "  ", "back": "  "}]`,
			want:    []Card{{Front: "Q", Back: "A"}},
		},
		{
			name:    "tags deduplicated and lowercased",
			content: `[{"front": "Q", "back": "A", "tags": ["Go", "go", " GO ", ""]}]`,
			want:    []Card{{Front: "Q", Back: "A", Tags: []string{"go"}}},
		},
		{
			name:    "no JSON at all",
			content: "I cannot produce flashcards from this material.",
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			content: `[{"front": "Q", "back": }]`,
			wantErr: true,
		},
		{
			name:    "only blank cards",
			content: `[{"front": "", "back": ""}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCardsTruncatesOversizedFields(t *testing.T) {
	long := strings.Repeat("x", maxBackLength+500)
	cards, err := ParseCards(`[{"front": "Q", "back": "` + long + `"}]`)
	require.NoError(t, err)
	assert.Len(t, cards[0].Back, maxBackLength)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		request *Request
		wantErr string
	}{
		{"nil request", nil, "nil"},
		{"empty source", &Request{SourceText: "   "}, "empty"},
		{"oversized source", &Request{SourceText: strings.Repeat("a", MaxSourceLength+1)}, "exceeds"},
		{"too many cards", &Request{SourceText: "text", CardCount: MaxCards + 1}, "between"},
		{"negative count", &Request{SourceText: "text", CardCount: -1}, "between"},
		{"valid", &Request{SourceText: "text", CardCount: 5}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.request)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRequestDefaultsCardCount(t *testing.T) {
	request := &Request{SourceText: "some material"}
	require.NoError(t, validateRequest(request))
	assert.Equal(t, DefaultCards, request.CardCount)
}
