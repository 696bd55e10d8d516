// internal/explorer/fetch-dataset/handler_test.go
package fetchdataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudata-explorer/internal/common/cache"
	"edudata-explorer/internal/common/config"
	"edudata-explorer/internal/common/database"
	apperrors "edudata-explorer/internal/common/errors"
	"edudata-explorer/internal/common/logger"
	"edudata-explorer/pkg/registry"
)

type upstream struct {
	server *httptest.Server
	hits   int32
	paths  []string
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *upstream {
	u := &upstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&u.hits, 1)
		u.paths = append(u.paths, r.URL.Path)
		handler(w, r)
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) calls() int {
	return int(atomic.LoadInt32(&u.hits))
}

func newTestHandler(t *testing.T, baseURL string, store cache.MemoStore) *Handler {
	return NewHandler(&Config{BaseURL: baseURL + "/"}, registry.Default(), store, logger.NewTestLogger(t))
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		jsonBody(`{"count":2,"results":[{"unitid":100654},{"unitid":100663}]}`)(w, r)
	})
	h := newTestHandler(t, u.server.URL, nil)

	out, err := h.Execute(context.Background(), &Input{Dataset: "IPEDS Admissions", Year: 2015})

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "/college-university/ipeds/admissions/2015/", u.paths[0])
	assert.Equal(t, u.server.URL+"/college-university/ipeds/admissions/2015/", out.Dataset.URL)
	assert.JSONEq(t, `{"count":2,"results":[{"unitid":100654},{"unitid":100663}]}`, string(out.Dataset.Data))
	assert.False(t, out.Dataset.Cached)
}

func TestHandler_Execute_UnknownDataset(t *testing.T) {
	u := newUpstream(t, jsonBody(`[]`))
	h := newTestHandler(t, u.server.URL, nil)

	for _, name := range []string{"", "IPEDS Finance", "ipeds directory"} {
		out, err := h.Execute(context.Background(), &Input{Dataset: name, Year: 2010})
		assert.NoError(t, err)
		assert.Nil(t, out)
	}
	assert.Zero(t, u.calls())
}

func TestHandler_Execute_Memoized(t *testing.T) {
	u := newUpstream(t, jsonBody(`[1,2,3]`))
	store := cache.NewMemoryStore()
	h := newTestHandler(t, u.server.URL, store)
	ctx := context.Background()

	first, err := h.Execute(ctx, &Input{Dataset: "IPEDS Directory", Year: 2010})
	require.NoError(t, err)
	second, err := h.Execute(ctx, &Input{Dataset: "IPEDS Directory", Year: 2010})
	require.NoError(t, err)

	assert.Equal(t, 1, u.calls())
	assert.False(t, first.Dataset.Cached)
	assert.True(t, second.Dataset.Cached)
	assert.Equal(t, string(first.Dataset.Data), string(second.Dataset.Data))

	// a different year is a different key
	_, err = h.Execute(ctx, &Input{Dataset: "IPEDS Directory", Year: 2011})
	require.NoError(t, err)
	assert.Equal(t, 2, u.calls())
	assert.Equal(t, 2, store.Len())
}

func TestHandler_Execute_HTTPStatusError(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	store := cache.NewMemoryStore()
	h := newTestHandler(t, u.server.URL, store)

	out, err := h.Execute(context.Background(), &Input{Dataset: "IPEDS Directory", Year: 2010})

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrHTTPStatus))
	assert.Equal(t, "/college-university/ipeds/directory/2010/", u.paths[0])

	stdErr := apperrors.AsStandard(err)
	assert.Equal(t, 404, stdErr.StatusCode)
	assert.Equal(t, "Not Found", stdErr.Metadata["reason"])
	assert.Equal(t, "HTTP Error: 404 - Not Found", apperrors.UserMessage(err))

	// failures are not memoized
	assert.Zero(t, store.Len())
	_, err = h.Execute(context.Background(), &Input{Dataset: "IPEDS Directory", Year: 2010})
	assert.Error(t, err)
	assert.Equal(t, 2, u.calls())
}

func TestHandler_Execute_DecodeError(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})
	h := newTestHandler(t, u.server.URL, nil)

	out, err := h.Execute(context.Background(), &Input{Dataset: "IPEDS Directory", Year: 2010})

	assert.Nil(t, out)
	assert.True(t, errors.Is(err, apperrors.ErrDecode))
	assert.Contains(t, apperrors.UserMessage(err), "An error occurred:")
}

func TestHandler_Execute_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	h := newTestHandler(t, base, nil)
	out, err := h.Execute(context.Background(), &Input{Dataset: "IPEDS Directory", Year: 2010})

	assert.Nil(t, out)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
}

func TestHandler_Execute_YearValidation(t *testing.T) {
	u := newUpstream(t, jsonBody(`[]`))
	h := newTestHandler(t, u.server.URL, nil)

	tests := []struct {
		name string
		year int
	}{
		{"missing", 0},
		{"too early", 1979},
		{"too late", 2024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{Dataset: "IPEDS Directory", Year: tt.year})
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
		})
	}

	for _, year := range []int{1980, 2023} {
		_, err := h.Execute(context.Background(), &Input{Dataset: "IPEDS Directory", Year: year})
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, u.calls())
}

func TestHandler_Execute_UnpartitionedDatasetIgnoresYear(t *testing.T) {
	u := newUpstream(t, jsonBody(`{"states":["AL","AK"]}`))
	reg := registry.Default()
	reg.Merge(&registry.DatasetRegistry{Datasets: []registry.Dataset{
		{Name: "State Codes", Path: "common/states/"},
	}})
	h := NewHandler(&Config{BaseURL: u.server.URL}, reg, nil, logger.NewTestLogger(t))

	first, err := h.Execute(context.Background(), &Input{Dataset: "State Codes", Year: 2010})
	require.NoError(t, err)
	_, err = h.Execute(context.Background(), &Input{Dataset: "State Codes"})
	require.NoError(t, err)

	assert.Equal(t, "/common/states/", u.paths[0])
	assert.Zero(t, first.Dataset.Selector.Year)
	assert.Equal(t, 1, u.calls())
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func TestHandler_Execute_StoreFailureFallsThrough(t *testing.T) {
	u := newUpstream(t, jsonBody(`[1]`))
	h := newTestHandler(t, u.server.URL, brokenStore{})

	out, err := h.Execute(context.Background(), &Input{Dataset: "IPEDS Directory", Year: 2010})

	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(out.Dataset.Data))
	assert.Equal(t, 1, u.calls())
}

func TestHandler_Execute_RedisMemo(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	u := newUpstream(t, jsonBody(`[{"unitid":1}]`))
	store := cache.NewRedisStore(client, "edudata:fetch:")

	// two handlers sharing one redis behave like two processes
	h1 := newTestHandler(t, u.server.URL, store)
	h2 := newTestHandler(t, u.server.URL, store)

	_, err = h1.Execute(context.Background(), &Input{Dataset: "IPEDS Institutional Characteristics", Year: 2003})
	require.NoError(t, err)
	out, err := h2.Execute(context.Background(), &Input{Dataset: "IPEDS Institutional Characteristics", Year: 2003})
	require.NoError(t, err)

	assert.True(t, out.Dataset.Cached)
	assert.Equal(t, 1, u.calls())
	assert.True(t, mr.Exists("edudata:fetch:IPEDS Institutional Characteristics:2003"))
}
