package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClientComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"m","response":"{\"title\":\"T\"}","done":true}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "smollm2:135m", nil)
	out, err := c.Complete(context.Background(), Prompt{System: "sys", User: "hello", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"T"}`, out)

	assert.Equal(t, "smollm2:135m", body["model"])
	assert.Equal(t, "hello", body["prompt"])
	assert.Equal(t, "sys", body["system"])
	assert.Equal(t, "json", body["format"])
	assert.Equal(t, false, body["stream"])
}

func TestOllamaClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "m", nil).Complete(context.Background(), Prompt{User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}

func TestExtractText(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"ollama", `{"response":"a"}`, "a"},
		{"text", `{"text":"b"}`, "b"},
		{"choices text", `{"choices":[{"text":"c"}]}`, "c"},
		{"choices message", `{"choices":[{"message":{"content":"d"}}]}`, "d"},
		{"results", `{"results":[{"response":"e"},{"text":"f"}]}`, "ef"},
		{"not json", "  plain  ", "plain"},
		{"unknown shape", `{"other":1}`, `{"other":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractText([]byte(tc.body)))
		})
	}
}

func TestNewOpenAICompleterValidation(t *testing.T) {
	_, err := NewOpenAICompleter("", "gpt-4o-mini", "")
	assert.Error(t, err)
	_, err = NewOpenAICompleter("key", "", "")
	assert.Error(t, err)

	c, err := NewOpenAICompleter("key", "gemini-2.0-flash", GeminiOpenAIBaseURL)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", c.Model)
	assert.Len(t, c.Opts, 2)
}
