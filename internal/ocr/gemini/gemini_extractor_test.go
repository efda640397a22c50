package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billextract/internal/config"
	"billextract/internal/domain"
	"billextract/internal/ocr"
	"billextract/internal/ocr/gemini"
	"billextract/internal/port"
)

func newTestExtractor(serverURL string) *gemini.Extractor {
	return gemini.NewExtractorWithEndpoint(&config.OCRProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-gemini-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  5,
	}, serverURL)
}

func successBody(text, finish string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": finish,
			},
		},
	}
}

func TestExtractText_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		contents := body["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		require.Len(t, parts, 2)
		inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "image/png", inline["mime_type"])
		assert.Equal(t, ocr.TranscriptionPrompt, parts[1].(map[string]interface{})["text"])

		genCfg := body["generationConfig"].(map[string]interface{})
		assert.Equal(t, "text/plain", genCfg["responseMimeType"])

		_ = json.NewEncoder(w).Encode(successBody("Page 1\nCrocin 1 x 10 = 10\nPage 2\nDolo 20", "STOP"))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).ExtractText(context.Background(), port.ExtractInput{
		FileBytes:   []byte{0x89, 'P', 'N', 'G'},
		ContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Equal(t, "gemini", out.Provider)
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
	assert.Equal(t, 2, out.Pages)
	assert.Contains(t, out.Text, "Crocin")
}

func TestExtractText_StripsCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(successBody("```\nCrocin 10\n```", "STOP"))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).ExtractText(context.Background(), port.ExtractInput{
		FileBytes: []byte("%PDF"), ContentType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "Crocin 10", out.Text)
}

func TestExtractText_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).ExtractText(context.Background(), port.ExtractInput{
		FileBytes: []byte("%PDF"), ContentType: "application/pdf",
	})

	var rl *ocr.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, "gemini", rl.Provider)
	assert.Equal(t, 15*time.Second, rl.RetryAfter)
}

func TestExtractText_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal"))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).ExtractText(context.Background(), port.ExtractInput{
		FileBytes: []byte("%PDF"), ContentType: "application/pdf",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestExtractText_EmptyAndTruncated(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		wantErr string
	}{
		{"no candidates", map[string]interface{}{"candidates": []interface{}{}}, "no candidates"},
		{"max tokens", successBody("partial", "MAX_TOKENS"), "MAX_TOKENS"},
		{"blank text", successBody("   ", "STOP"), "no text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
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

func TestExtractText_UnsupportedType(t *testing.T) {
	_, err := newTestExtractor("http://127.0.0.1:1").ExtractText(context.Background(), port.ExtractInput{
		FileBytes: []byte("x"), ContentType: "application/zip",
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}
