// Package explorer wires the fetch, digest and query steps behind one
// facade shared by the CLI and the HTTP API.
package explorer

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"edudata-explorer/internal/common/cache"
	"edudata-explorer/internal/common/config"
	apperrors "edudata-explorer/internal/common/errors"
	"edudata-explorer/internal/common/logger"
	"edudata-explorer/internal/common/observability"
	answerquery "edudata-explorer/internal/explorer/answer-query"
	builddigest "edudata-explorer/internal/explorer/build-digest"
	fetchdataset "edudata-explorer/internal/explorer/fetch-dataset"
	"edudata-explorer/internal/models"
	"edudata-explorer/pkg/registry"
)

// Step names recorded by the observability layer.
const (
	StepFetch  = "fetch"
	StepDigest = "digest"
	StepAsk    = "ask"
)

var ErrSessionNotFound = stderrors.New("session not found")

type Dependencies struct {
	Registry      *registry.DatasetRegistry
	Store         cache.MemoStore
	Completer     answerquery.Completer
	FetchConfig   *fetchdataset.Config
	AnswerConfig  *answerquery.Config
	DefaultYear   int
	Observability *observability.Observability
	Logger        logger.Logger
}

type Service struct {
	registry    *registry.DatasetRegistry
	fetcher     *fetchdataset.Handler
	digester    *builddigest.Handler
	answerer    *answerquery.Handler
	sessions    *SessionManager
	obs         *observability.Observability
	errors      *apperrors.ErrorHandler
	defaultYear int
	logger      logger.Logger
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	reg := deps.Registry
	if reg == nil {
		reg = registry.Default()
	}
	fetchCfg := deps.FetchConfig
	if fetchCfg == nil {
		fetchCfg = &fetchdataset.Config{BaseURL: config.DefaultExplorerBaseURL}
	}
	answerCfg := deps.AnswerConfig
	if answerCfg == nil {
		answerCfg = &answerquery.Config{MaxTokens: answerquery.DefaultMaxTokens}
	}
	defaultYear := deps.DefaultYear
	if defaultYear == 0 {
		defaultYear = models.DefaultYear
	}

	return &Service{
		registry:    reg,
		fetcher:     fetchdataset.NewHandler(fetchCfg, reg, deps.Store, log),
		digester:    builddigest.NewHandler(builddigest.LoadConfig(), log),
		answerer:    answerquery.NewHandler(answerCfg, deps.Completer, log),
		sessions:    NewSessionManager(),
		obs:         deps.Observability,
		errors:      apperrors.NewErrorHandler(log),
		defaultYear: defaultYear,
		logger:      log.With(map[string]interface{}{"component": "explorer"}),
	}
}

// Datasets lists the selectable datasets in display order.
func (s *Service) Datasets() []registry.Dataset {
	return s.registry.Datasets
}

func (s *Service) DefaultYear() int {
	return s.defaultYear
}

// ResolveName accepts a dataset name or its 1-based position in Datasets.
func (s *Service) ResolveName(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(s.registry.Datasets) {
			return s.registry.Datasets[n-1].Name, true
		}
		return "", false
	}
	for _, d := range s.registry.Datasets {
		if strings.EqualFold(d.Name, arg) {
			return d.Name, true
		}
	}
	return "", false
}

func (s *Service) StartSession() *models.Session {
	session := s.sessions.Create()
	s.logger.Info("session started", map[string]interface{}{"sessionId": session.ID})
	return session
}

func (s *Service) EndSession(id string) error {
	if !s.sessions.End(id) {
		return ErrSessionNotFound
	}
	s.logger.Info("session ended", map[string]interface{}{"sessionId": id})
	return nil
}

func (s *Service) Session(id string) (*models.Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) SessionCount() int {
	return s.sessions.Count()
}

// Fetch retrieves a dataset and, on success only, makes it the session's
// current data. A zero year means the default year. An unknown dataset
// returns (nil, nil) and leaves the slot untouched.
func (s *Service) Fetch(ctx context.Context, session *models.Session, name string, year int) (*models.Dataset, error) {
	start := time.Now()

	if year == 0 {
		year = s.defaultYear
	}
	out, err := s.fetcher.Execute(ctx, &fetchdataset.Input{Dataset: name, Year: year})
	s.record(ctx, StepFetch, start, err)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}

	if session != nil {
		session.Store(out.Dataset)
	}
	return out.Dataset, nil
}

// Digest renders the session's current data.
func (s *Service) Digest(ctx context.Context, session *models.Session) (*builddigest.Output, error) {
	start := time.Now()

	var dataset *models.Dataset
	if session != nil {
		dataset, _ = session.LastDataset()
	}
	if dataset == nil {
		err := apperrors.NewStateError("no data available; fetch first")
		s.record(ctx, StepDigest, start, err)
		return nil, err
	}

	out, err := s.digester.Execute(ctx, &builddigest.Input{Data: dataset.Data})
	s.record(ctx, StepDigest, start, err)
	return out, err
}

// Ask answers question against the session's current data.
func (s *Service) Ask(ctx context.Context, session *models.Session, question string) (*answerquery.Output, error) {
	start := time.Now()
	out, err := s.answerer.Execute(ctx, session, &answerquery.Input{Question: question})
	s.record(ctx, StepAsk, start, err)
	return out, err
}

// UserMessage logs err for action and returns the text to show the user.
func (s *Service) UserMessage(action string, err error) string {
	return s.errors.Handle(action, err)
}

func (s *Service) Close() {
	s.obs.Shutdown()
}

func (s *Service) record(ctx context.Context, step string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = strings.ToLower(string(apperrors.CodeOf(err)))
	}
	s.obs.RecordStep(ctx, step, status, time.Since(start))
}
