package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedTasks(t *testing.T) {
	content := "```json\n[{\"title\":\" Write report \",\"description\":\"Q3 numbers\",\"dueDate\":\"2030-01-02T15:00:00Z\"},{\"title\":\"Call Bob\",\"dueDate\":null},{\"title\":\"Plan\",\"dueDate\":\"2030-05-01\"},{\"title\":\"Odd\",\"dueDate\":\"soon\"}]\n```"

	tasks, err := parseGeneratedTasks(content)
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	assert.Equal(t, "Write report", tasks[0].Title)
	assert.Equal(t, "Q3 numbers", tasks[0].Description)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, tasks[0].DueDate.Equal(time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC)))

	assert.Nil(t, tasks[1].DueDate)
	require.NotNil(t, tasks[2].DueDate)
	assert.Equal(t, 2030, tasks[2].DueDate.Year())
	assert.Nil(t, tasks[3].DueDate)
}

func TestParseGeneratedTasks_Invalid(t *testing.T) {
	_, err := parseGeneratedTasks("Sure! Here are your tasks.")
	assert.ErrorContains(t, err, "failed to parse AI response")
}

func TestAIService_GenerateTasks(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "ship the release")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: `[{"title":"Ship the release","description":"","dueDate":null}]`,
				},
			}},
		})
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	svc := NewAIServiceWithConfig(cfg, openai.GPT4oMini)

	tasks, err := svc.GenerateTasks(context.Background(), "We need to ship the release")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ship the release", tasks[0].Title)
	assert.Equal(t, openai.GPT4oMini, gotModel)
}

func TestAIService_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"

	_, err := NewAIServiceWithConfig(cfg, openai.GPT4o).GenerateTasks(context.Background(), "anything")
	assert.ErrorContains(t, err, "no response from OpenAI")
}
