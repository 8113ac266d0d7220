package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
)

// Client generates candidate quiz questions with the OpenAI chat API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a generation client. An empty model falls back to GPT-4o.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = openai.GPT4o
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// GenerateQuestions requests perVerse candidate questions for each verse.
// The model is forced through a function call so the output is structured
// rather than free text.
func (c *Client) GenerateQuestions(
	ctx context.Context, verses []*entities.Verse, perVerse int,
) ([]*entities.GeneratedQuestion, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are an expert author of Quranic memorization quizzes. " +
					"Generate multiple choice questions with exactly 4 options each, " +
					"anchored to the given verses, at mixed difficulty tiers.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(verses, perVerse),
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        "submit_questions",
					Description: "Submit generated quiz questions",
					Parameters:  questionSchema,
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: "submit_questions"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != "submit_questions" {
		return nil, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}

	var args struct {
		Questions []struct {
			Surah         int      `json:"surah"`
			Ayah          int      `json:"ayah"`
			Text          string   `json:"text"`
			Options       []string `json:"options"`
			CorrectAnswer int      `json:"correct_answer"`
			Difficulty    string   `json:"difficulty"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}

	questions := make([]*entities.GeneratedQuestion, 0, len(args.Questions))
	for _, q := range args.Questions {
		if len(q.Options) != 4 || q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			continue // drop malformed items instead of failing the batch
		}
		difficulty := entities.Difficulty(q.Difficulty)
		switch difficulty {
		case entities.DifficultyEasy, entities.DifficultyMedium, entities.DifficultyHard:
		default:
			difficulty = entities.DifficultyMedium
		}
		questions = append(questions, &entities.GeneratedQuestion{
			SurahNumber:   q.Surah,
			AyahNumber:    q.Ayah,
			Prompt:        q.Text,
			Choices:       q.Options,
			CorrectChoice: q.Options[q.CorrectAnswer],
			Difficulty:    difficulty,
		})
	}

	return questions, nil
}

func buildPrompt(verses []*entities.Verse, perVerse int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d questions for each of the following verses.\n\n", perVerse)
	for _, v := range verses {
		fmt.Fprintf(&sb, "Surah %d, Ayah %d: %s\n", v.SurahNumber, v.AyahNumber, v.Text)
	}
	sb.WriteString("\nEach question must reference the surah and ayah it was generated for.")
	return sb.String()
}

var questionSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"questions": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"surah": map[string]interface{}{
						"type":        "integer",
						"description": "Surah (chapter) number, 1-114",
					},
					"ayah": map[string]interface{}{
						"type":        "integer",
						"description": "Ayah (verse) number within the surah",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "The question text",
					},
					"options": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Array of 4 multiple choice options",
					},
					"correct_answer": map[string]interface{}{
						"type":        "integer",
						"description": "0-based index of the correct option",
					},
					"difficulty": map[string]interface{}{
						"type": "string",
						"enum": []string{"easy", "medium", "hard"},
					},
				},
				"required": []string{"surah", "ayah", "text", "options", "correct_answer", "difficulty"},
			},
		},
	},
	"required": []string{"questions"},
}
