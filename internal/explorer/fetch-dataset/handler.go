// internal/explorer/fetch-dataset/handler.go
package fetchdataset

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"edudata-explorer/internal/common/cache"
	apperrors "edudata-explorer/internal/common/errors"
	commonhttp "edudata-explorer/internal/common/http"
	"edudata-explorer/internal/common/logger"
	"edudata-explorer/internal/common/metrics"
	"edudata-explorer/internal/common/validation"
	"edudata-explorer/internal/models"
	"edudata-explorer/pkg/registry"
)

const (
	TaskType = "fetch-dataset"
)

var errInvalidJSON = errors.New("response body is not valid JSON")

type Handler struct {
	config   *Config
	client   *commonhttp.Client
	registry *registry.DatasetRegistry
	store    cache.MemoStore
	logger   logger.Logger
}

func NewHandler(config *Config, reg *registry.DatasetRegistry, store cache.MemoStore, log logger.Logger) *Handler {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &Handler{
		config:   config,
		client:   commonhttp.NewClient(config.Timeout),
		registry: reg,
		store:    store,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute resolves the selector, serves it from the memo if present and
// otherwise issues a single GET. An unknown dataset name yields (nil, nil)
// without touching the network. Only successful bodies are memoized.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	entry, ok := h.registry.Lookup(input.Dataset)
	if !ok {
		metrics.DatasetFetches.WithLabelValues("unknown", metrics.OutcomeUnknown).Inc()
		h.logger.Warn("unknown dataset requested", map[string]interface{}{
			"dataset": input.Dataset,
		})
		return nil, nil
	}

	sel := input.Selector()
	if !entry.YearPartitioned {
		sel.Year = 0
	}
	if err := validation.ValidateSelector(sel, h.registry.Names(), entry.YearPartitioned); err != nil {
		metrics.DatasetFetches.WithLabelValues(sel.Name, metrics.OutcomeError).Inc()
		return nil, err
	}

	url := entry.ResolveURL(h.config.BaseURL, sel.Year)
	key := sel.Key()

	if data, found, err := h.store.Get(ctx, key); err != nil {
		h.logger.Warn("memo lookup failed, fetching from upstream", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	} else if found {
		metrics.DatasetFetches.WithLabelValues(sel.Name, metrics.OutcomeCached).Inc()
		h.logger.Debug("dataset served from memo", map[string]interface{}{
			"key": key,
		})
		return &Output{Dataset: &models.Dataset{
			Selector:  sel,
			URL:       url,
			Data:      data,
			FetchedAt: time.Now().UTC(),
			Cached:    true,
		}}, nil
	}

	data, err := h.get(ctx, sel, url)
	if err != nil {
		metrics.DatasetFetches.WithLabelValues(sel.Name, metrics.OutcomeError).Inc()
		h.logger.Error("dataset fetch failed", map[string]interface{}{
			"dataset": sel.Name,
			"year":    sel.Year,
			"url":     url,
			"error":   err.Error(),
		})
		return nil, err
	}

	if err := h.store.Set(ctx, key, data); err != nil {
		h.logger.Warn("failed to memoize dataset", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	metrics.DatasetFetches.WithLabelValues(sel.Name, metrics.OutcomeSuccess).Inc()
	h.logger.Info("dataset fetched", map[string]interface{}{
		"dataset": sel.Name,
		"year":    sel.Year,
		"bytes":   len(data),
	})

	return &Output{Dataset: &models.Dataset{
		Selector:  sel,
		URL:       url,
		Data:      data,
		FetchedAt: time.Now().UTC(),
	}}, nil
}

func (h *Handler) get(ctx context.Context, sel models.DatasetSelector, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	metrics.DatasetFetchDuration.WithLabelValues(sel.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewHTTPStatusError(resp.StatusCode, reasonPhrase(resp))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError(err)
	}
	if !gjson.ValidBytes(body) {
		return nil, apperrors.NewDecodeError(errInvalidJSON)
	}
	return body, nil
}

// reasonPhrase returns the server-supplied reason text from the status
// line, e.g. "Not Found" for "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
