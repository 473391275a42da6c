package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/project-board-api/internal/utils"
)

// TaskGenerator turns free text into task suggestions.
type TaskGenerator interface {
	GenerateTasks(ctx context.Context, text string) ([]GeneratedTask, error)
}

type GeneratedTask struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// AIService is a TaskGenerator backed by the OpenAI chat completion API.
type AIService struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
		now:    time.Now,
	}
}

// NewAIServiceWithConfig builds an AIService against a custom endpoint.
func NewAIServiceWithConfig(cfg openai.ClientConfig, model string) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		now:    time.Now,
	}
}

const taskPrompt = `You are a task extraction assistant. Extract concrete, actionable tasks from the text below.

Current time: %s

Text:
%s

Reply with a JSON array of tasks in this shape:
[
  {
    "title": "short task title",
    "description": "details of the task",
    "dueDate": "deadline as RFC 3339 (e.g. 2025-10-28T23:59:59Z), or null when none is stated"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative deadlines such as "tomorrow" or "next week" into concrete dates
- dueDate must be an RFC 3339 string or null
- Reply with JSON only, no commentary`

// GenerateTasks analyzes text and extracts tasks using OpenAI GPT
func (s *AIService) GenerateTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(taskPrompt, s.now().Format(time.RFC3339), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseGeneratedTasks(resp.Choices[0].Message.Content)
}

// parseGeneratedTasks decodes the model's reply, tolerating a markdown code
// fence around the JSON. Unparseable due dates are dropped.
func parseGeneratedTasks(content string) ([]GeneratedTask, error) {
	body := strings.TrimSpace(content)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var raw []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		DueDate     *string `json:"dueDate"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	tasks := make([]GeneratedTask, 0, len(raw))
	for _, r := range raw {
		task := GeneratedTask{
			Title:       strings.TrimSpace(r.Title),
			Description: strings.TrimSpace(r.Description),
		}
		if r.DueDate != nil && *r.DueDate != "" {
			if due, err := utils.ParseDate(*r.DueDate); err == nil {
				task.DueDate = &due
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
