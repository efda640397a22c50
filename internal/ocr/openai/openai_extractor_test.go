package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billextract/internal/config"
	"billextract/internal/domain"
	"billextract/internal/ocr"
	"billextract/internal/ocr/openai"
	"billextract/internal/port"
)

func newTestExtractor(serverURL string) *openai.Extractor {
	return openai.NewExtractorWithEndpoint(&config.OCRProviderConfig{
		Provider:    "openai",
		APIKey:      "test-openai-key",
		TimeoutSecs: 5,
	}, serverURL)
}

func choice(content, finish string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}, "finish_reason": finish},
		},
	}
}

func TestExtractText_Image(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body["model"])
		msgs := body["messages"].([]interface{})
		blocks := msgs[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, blocks, 2)
		img := blocks[0].(map[string]interface{})
		assert.Equal(t, "image_url", img["type"])
		url := img["image_url"].(map[string]interface{})["url"].(string)
		assert.True(t, strings.HasPrefix(url, "data:image/webp;base64,"))

		_ = json.NewEncoder(w).Encode(choice("Dolo 650 1 x 20.00 = 20.00", "stop"))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).ExtractText(context.Background(), port.ExtractInput{
		FileBytes: []byte("RIFF"), ContentType: "image/webp",
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", out.Provider)
	assert.Equal(t, "gpt-4o", out.ModelUsed)
	assert.Equal(t, "Dolo 650 1 x 20.00 = 20.00", out.Text)
}

func TestExtractText_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    interface{}
		wantErr string
	}{
		{"no choices", http.StatusOK, map[string]interface{}{"choices": []interface{}{}}, "no choices"},
		{"truncated", http.StatusOK, choice("partial", "length"), "finish_reason: length"},
		{"empty", http.StatusOK, choice("", "stop"), "no text"},
		{"server error", http.StatusInternalServerError, map[string]string{"error": "x"}, "status 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			_, err := newTestExtractor(server.URL).ExtractText(context.Background(), port.ExtractInput{
				FileBytes: []byte("%PDF"), ContentType: "application/pdf",
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExtractText_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).ExtractText(context.Background(), port.ExtractInput{
		FileBytes: []byte("%PDF"), ContentType: "application/pdf",
	})
	var rl *ocr.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, "openai", rl.Provider)
}

func TestExtractText_Unsupported(t *testing.T) {
	_, err := newTestExtractor("http://127.0.0.1:1").ExtractText(context.Background(), port.ExtractInput{
		FileBytes: []byte("x"), ContentType: "image/gif",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}
