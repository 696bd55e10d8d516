// internal/explorer/answer-query/handler_test.go
package answerquery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "edudata-explorer/internal/common/errors"
	"edudata-explorer/internal/common/llm"
	"edudata-explorer/internal/common/logger"
	builddigest "edudata-explorer/internal/explorer/build-digest"
	"edudata-explorer/internal/models"
)

type fakeCompleter struct {
	calls    int
	requests []llm.CompletionRequest
	text     string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Text: f.text}, nil
}

func sessionWith(t *testing.T, data string) *models.Session {
	t.Helper()
	s := models.NewSession()
	s.Store(&models.Dataset{
		Selector: models.DatasetSelector{Name: "IPEDS Directory", Year: 2010},
		Data:     json.RawMessage(data),
	})
	return s
}

func newTestHandler(t *testing.T, c Completer) *Handler {
	return NewHandler(&Config{MaxTokens: 150}, c, logger.NewTestLogger(t))
}

func TestHandler_Execute_EmptyQuestion(t *testing.T) {
	fake := &fakeCompleter{text: "unused"}
	h := newTestHandler(t, fake)

	for _, q := range []string{"", "   ", "\n\t"} {
		out, err := h.Execute(context.Background(), sessionWith(t, `[1]`), &Input{Question: q})
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.Equal(t, "Please enter a query.", apperrors.UserMessage(err))
	}

	// validation wins over missing data
	_, err := h.Execute(context.Background(), nil, &Input{Question: ""})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	assert.Zero(t, fake.calls)
}

func TestHandler_Execute_NoData(t *testing.T) {
	fake := &fakeCompleter{text: "unused"}
	h := newTestHandler(t, fake)

	out, err := h.Execute(context.Background(), nil, &Input{Question: "some question"})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, apperrors.ErrState))

	_, err = h.Execute(context.Background(), models.NewSession(), &Input{Question: "some question"})
	assert.True(t, errors.Is(err, apperrors.ErrState))
	assert.Equal(t, "No data available; fetch first.", apperrors.UserMessage(err))

	cleared := sessionWith(t, `[1]`)
	cleared.Clear()
	_, err = h.Execute(context.Background(), cleared, &Input{Question: "some question"})
	assert.True(t, errors.Is(err, apperrors.ErrState))

	assert.Zero(t, fake.calls)
}

func TestHandler_Execute_TwentyFiveEntries(t *testing.T) {
	items := make([]map[string]int, 25)
	for i := range items {
		items[i] = map[string]int{"unitid": 100000 + i}
	}
	data, err := json.Marshal(items)
	require.NoError(t, err)

	fake := &fakeCompleter{text: "  There are at least 10 entries shown.\n"}
	h := NewHandler(&Config{MaxTokens: 150, SystemPrompt: "You are a data analyst."}, fake, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), sessionWith(t, string(data)), &Input{Question: "How many entries are there?"})
	require.NoError(t, err)

	wantDigest := builddigest.Summarize(data)
	assert.Len(t, strings.Split(wantDigest, "\n"), 10)
	assert.Equal(t, wantDigest, out.Digest)
	assert.Contains(t, out.Digest, `{"unitid":100009}`)
	assert.NotContains(t, out.Digest, `{"unitid":100010}`)

	assert.Equal(t, "Using the following data:\n"+wantDigest+"\n\nAnswer this question: How many entries are there?", out.Prompt)
	assert.True(t, strings.HasSuffix(out.Prompt, "How many entries are there?"))
	assert.Equal(t, "There are at least 10 entries shown.", out.Answer)

	require.Equal(t, 1, fake.calls)
	assert.Equal(t, out.Prompt, fake.requests[0].Prompt)
	assert.Equal(t, 150, fake.requests[0].MaxTokens)
	assert.Equal(t, "You are a data analyst.", fake.requests[0].System)
}

func TestHandler_Execute_UpstreamFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"typed upstream error", apperrors.NewUpstreamError("completion provider returned an error", errors.New("rate limited"))},
		{"plain error", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCompleter{err: tt.err}
			h := newTestHandler(t, fake)

			out, err := h.Execute(context.Background(), sessionWith(t, `[1,2]`), &Input{Question: "q"})
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, apperrors.ErrUpstream))
			assert.Equal(t, 1, fake.calls, "no retry")
		})
	}
}

func TestHandler_Execute_WithCompletionClient(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"choices":[{"message":{"content":" 3 rows. "}}]}`))
	}))
	defer server.Close()

	client := llm.NewClient(&llm.Config{BaseURL: server.URL, APIKey: "sk-test", Model: "gpt-test"}, nil, logger.NewTestLogger(t))
	h := newTestHandler(t, client)

	_, err := h.Execute(context.Background(), nil, &Input{Question: "q"})
	assert.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&calls))

	out, err := h.Execute(context.Background(), sessionWith(t, `[1,2,3]`), &Input{Question: "How many rows?"})
	require.NoError(t, err)
	assert.Equal(t, "3 rows.", out.Answer)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
