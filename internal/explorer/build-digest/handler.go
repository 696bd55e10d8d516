// internal/explorer/build-digest/handler.go
package builddigest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	apperrors "edudata-explorer/internal/common/errors"
	"edudata-explorer/internal/common/logger"
)

const (
	TaskType = "build-digest"
)

var errInvalidData = errors.New("data is not valid JSON")

var lineBreaks = strings.NewReplacer("\r", `\r`, "\n", `\n`)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if len(input.Data) > 0 && !gjson.ValidBytes(input.Data) {
		return nil, apperrors.NewDecodeError(errInvalidData)
	}

	lines := summarize(input.Data, h.config.MaxEntries, h.config.MaxEntryChars)

	h.logger.Debug("digest built", map[string]interface{}{
		"entries":   len(lines),
		"inputSize": len(input.Data),
	})

	return &Output{
		Digest:  strings.Join(lines, "\n"),
		Entries: len(lines),
	}, nil
}

// Summarize renders at most MaxEntries top-level entries of a JSON document,
// one per line, each value cut to MaxEntryChars characters. Arrays yield one
// line per element; objects yield "key: value" lines in document order.
// Any other value is treated as a one-element array.
func Summarize(data []byte) string {
	return strings.Join(summarize(data, MaxEntries, MaxEntryChars), "\n")
}

func summarize(data []byte, maxEntries, maxChars int) []string {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	root := gjson.ParseBytes(data)
	lines := make([]string, 0, maxEntries)

	switch {
	case root.IsArray():
		root.ForEach(func(_, value gjson.Result) bool {
			if len(lines) >= maxEntries {
				return false
			}
			lines = append(lines, truncate(render(value), maxChars))
			return true
		})
	case root.IsObject():
		root.ForEach(func(key, value gjson.Result) bool {
			if len(lines) >= maxEntries {
				return false
			}
			lines = append(lines, lineBreaks.Replace(key.String())+": "+truncate(render(value), maxChars))
			return true
		})
	default:
		if maxEntries > 0 {
			lines = append(lines, truncate(render(root), maxChars))
		}
	}
	return lines
}

// render gives strings verbatim and everything else as compact JSON. Line
// breaks are escaped so every entry stays on one line.
func render(value gjson.Result) string {
	if value.Type == gjson.String {
		return lineBreaks.Replace(value.Str)
	}
	return lineBreaks.Replace(string(pretty.Ugly([]byte(value.Raw))))
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
