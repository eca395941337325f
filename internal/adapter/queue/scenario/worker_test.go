package scenario

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/scenariowizard/worker/internal/adapter/llm/reliability"
	domain "github.com/scenariowizard/worker/internal/domain/scenario"
	"github.com/scenariowizard/worker/internal/usecase/generation"
)

type mockFeatureRepo struct {
	getByIDsFn       func(ctx context.Context, ids []string) ([]domain.Feature, error)
	listByDocumentFn func(ctx context.Context, documentID string) ([]domain.Feature, error)
}

func (m *mockFeatureRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Feature, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	features := make([]domain.Feature, len(ids))
	for i, id := range ids {
		features[i] = domain.Feature{ID: id, DocumentID: "doc-1", Title: "Feature " + id}
	}
	return features, nil
}

func (m *mockFeatureRepo) ListByDocument(ctx context.Context, documentID string) ([]domain.Feature, error) {
	if m.listByDocumentFn != nil {
		return m.listByDocumentFn(ctx, documentID)
	}
	return []domain.Feature{
		{ID: "feat-1", DocumentID: documentID, Title: "Feature One"},
		{ID: "feat-2", DocumentID: documentID, Title: "Feature Two"},
	}, nil
}

type mockProvider struct{}

func (m *mockProvider) Name() string  { return "grok" }
func (m *mockProvider) Model() string { return "grok-4" }

func (m *mockProvider) GenerateScenario(ctx context.Context, template domain.PromptTemplate, feature domain.Feature, testType domain.TestType, params domain.GenerationParams) (*domain.ProviderResponse, error) {
	return &domain.ProviderResponse{Content: "ok", Provider: "grok", Model: "grok-4"}, nil
}

func (m *mockProvider) HealthCheck(ctx context.Context) bool { return true }

type mockScenarioRepo struct {
	count int
}

func (m *mockScenarioRepo) AppendRecord(ctx context.Context, record *domain.GenerationRecord) error {
	m.count++
	return nil
}

func (m *mockScenarioRepo) GetRecord(ctx context.Context, id string) (*domain.GenerationRecord, error) {
	return nil, domain.ErrRecordNotFound
}

func (m *mockScenarioRepo) ListByFeature(ctx context.Context, featureID string) ([]domain.GenerationRecord, error) {
	return nil, nil
}

func (m *mockScenarioRepo) Stats(ctx context.Context, featureIDs []string) (*domain.GenerationStats, error) {
	return &domain.GenerationStats{}, nil
}

func (m *mockScenarioRepo) ClearStaleGenerationErrors(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubTemplates struct{}

func (stubTemplates) Get(testType domain.TestType) (domain.PromptTemplate, error) {
	return domain.PromptTemplate{ID: string(testType) + "_default", Body: "body"}, nil
}

func newTestWorker(t *testing.T, features domain.FeatureRepository) (*Worker, *mockScenarioRepo) {
	t.Helper()

	repo := &mockScenarioRepo{}
	mgr, err := generation.NewManager(
		[]domain.Provider{&mockProvider{}},
		stubTemplates{},
		repo,
		generation.WithRetryConfig(reliability.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewWorker(mgr, features), repo
}

func newTestJob(args Args) *river.Job[Args] {
	return &river.Job[Args]{
		JobRow: &rivertype.JobRow{
			ID:      1,
			Attempt: 1,
		},
		Args: args,
	}
}

func TestArgs_Kind(t *testing.T) {
	if (Args{}).Kind() != "scenario:generate" {
		t.Errorf("unexpected kind: %s", Args{}.Kind())
	}
}

func TestArgs_InsertOpts(t *testing.T) {
	opts := Args{}.InsertOpts()
	if opts.MaxAttempts != 3 {
		t.Errorf("expected 3 max attempts, got %d", opts.MaxAttempts)
	}
	if opts.Queue != QueueDefault {
		t.Errorf("expected queue %s, got %s", QueueDefault, opts.Queue)
	}
	if !opts.UniqueOpts.ByArgs {
		t.Error("expected uniqueness by args")
	}
}

func TestWorker_NextRetry(t *testing.T) {
	w, _ := newTestWorker(t, &mockFeatureRepo{})

	job := newTestJob(Args{})
	job.Attempt = 2

	next := w.NextRetry(job)
	expected := time.Now().Add(40 * time.Second)
	if next.Before(expected.Add(-time.Second)) || next.After(expected.Add(time.Second)) {
		t.Errorf("expected retry ~40s out for attempt 2, got %v", time.Until(next))
	}
}

func TestWork_GeneratesForExplicitFeatures(t *testing.T) {
	w, repo := newTestWorker(t, &mockFeatureRepo{})

	job := newTestJob(Args{
		FeatureIDs: []string{"feat-1", "feat-2"},
		TestTypes:  []string{"unit", "e2e"},
	})

	if err := w.Work(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.count != 4 {
		t.Errorf("expected 4 records (2 features x 2 types), got %d", repo.count)
	}
}

func TestWork_GeneratesForDocument(t *testing.T) {
	w, repo := newTestWorker(t, &mockFeatureRepo{})

	job := newTestJob(Args{
		DocumentID: "doc-1",
		TestTypes:  []string{"unit"},
	})

	if err := w.Work(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.count != 2 {
		t.Errorf("expected 2 records, got %d", repo.count)
	}
}

func TestWork_InvalidArgsCancelsJob(t *testing.T) {
	w, _ := newTestWorker(t, &mockFeatureRepo{})

	job := newTestJob(Args{TestTypes: []string{"unit"}})

	err := w.Work(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for missing targets")
	}

	var cancelErr *rivertype.JobCancelError
	if !errors.As(err, &cancelErr) {
		t.Errorf("expected job cancellation, got: %v", err)
	}
}

func TestWork_UnsupportedTestTypeCancelsJob(t *testing.T) {
	w, _ := newTestWorker(t, &mockFeatureRepo{})

	job := newTestJob(Args{
		FeatureIDs: []string{"feat-1"},
		TestTypes:  []string{"performance"},
	})

	err := w.Work(context.Background(), job)
	var cancelErr *rivertype.JobCancelError
	if !errors.As(err, &cancelErr) {
		t.Errorf("expected job cancellation for invalid test type, got: %v", err)
	}
}

func TestWork_MissingFeatureCancelsJob(t *testing.T) {
	features := &mockFeatureRepo{
		getByIDsFn: func(ctx context.Context, ids []string) ([]domain.Feature, error) {
			return nil, domain.ErrFeatureNotFound
		},
	}
	w, _ := newTestWorker(t, features)

	job := newTestJob(Args{
		FeatureIDs: []string{"missing"},
		TestTypes:  []string{"unit"},
	})

	err := w.Work(context.Background(), job)
	var cancelErr *rivertype.JobCancelError
	if !errors.As(err, &cancelErr) {
		t.Errorf("expected job cancellation for missing feature, got: %v", err)
	}
}

func TestWork_EmptyDocumentCancelsJob(t *testing.T) {
	features := &mockFeatureRepo{
		listByDocumentFn: func(ctx context.Context, documentID string) ([]domain.Feature, error) {
			return nil, nil
		},
	}
	w, _ := newTestWorker(t, features)

	job := newTestJob(Args{
		DocumentID: "empty-doc",
		TestTypes:  []string{"unit"},
	})

	err := w.Work(context.Background(), job)
	var cancelErr *rivertype.JobCancelError
	if !errors.As(err, &cancelErr) {
		t.Errorf("expected job cancellation for empty document, got: %v", err)
	}
}

func TestWork_TransientRepoErrorRetries(t *testing.T) {
	features := &mockFeatureRepo{
		listByDocumentFn: func(ctx context.Context, documentID string) ([]domain.Feature, error) {
			return nil, errors.New("connection refused")
		},
	}
	w, _ := newTestWorker(t, features)

	job := newTestJob(Args{
		DocumentID: "doc-1",
		TestTypes:  []string{"unit"},
	})

	err := w.Work(context.Background(), job)
	if err == nil {
		t.Fatal("expected error")
	}
	var cancelErr *rivertype.JobCancelError
	if errors.As(err, &cancelErr) {
		t.Error("transient errors must surface for retry, not cancel the job")
	}
}
