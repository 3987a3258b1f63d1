package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/complyhub/internal/application"
	"github.com/bryanwahyu/complyhub/internal/application/analysis"
	"github.com/bryanwahyu/complyhub/internal/domain/ai"
	"github.com/bryanwahyu/complyhub/internal/domain/apperr"
	"github.com/bryanwahyu/complyhub/internal/domain/assessment"
	"github.com/bryanwahyu/complyhub/internal/infra/db/memory"
	"github.com/bryanwahyu/complyhub/internal/logging"
)

var generatedAt = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

type fakeStore struct {
	key, contentType string
	body             []byte
	err              error
}

func (f *fakeStore) Upload(_ context.Context, key string, body []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key, f.body, f.contentType = key, body, contentType
	return "http://minio.local/archives/" + key, nil
}

type fakeAI struct {
	got  ai.BriefRequest
	text string
	err  error
}

func (f *fakeAI) Brief(_ context.Context, req ai.BriefRequest) (string, error) {
	f.got = req
	return f.text, f.err
}

func setup(t *testing.T, withAnalysis bool) (*Service, *fakeStore, *fakeAI) {
	t.Helper()
	store := memory.NewStore()
	a := &assessment.Assessment{ID: "asm-1", OrganizationID: "org-1", Status: assessment.StatusCompleted}
	if withAnalysis {
		score := 7.7
		at := generatedAt
		a.RiskScore = &score
		a.AIGeneratedAt = &at
		a.AIRiskAnalysis = assessment.RiskAnalysis{assessment.CategoryKYCAML: {Score: 9, TotalGaps: 2, CriticalGaps: 1}}
		a.AIStrategyMatrix = []assessment.StrategyRow{{RiskArea: assessment.CategoryKYCAML, AdjustedRisk: 9, Priority: assessment.PriorityImmediate}}
	}
	store.PutAssessment(a)

	obj := &fakeStore{}
	client := &fakeAI{text: "  Overall exposure is high.  "}
	svc := NewService(memory.NewAssessmentRepository(store), obj, client,
		application.ClockFunc(func() time.Time { return generatedAt.Add(time.Hour) }), logging.NewNop())
	return svc, obj, client
}

func TestArchive(t *testing.T) {
	svc, obj, _ := setup(t, true)

	got, err := svc.Archive(context.Background(), "asm-1", "org-1")
	require.NoError(t, err)

	wantKey := fmt.Sprintf("org-1/asm-1/analysis-%d.json", generatedAt.UnixMilli())
	assert.Equal(t, wantKey, got.Key)
	assert.Equal(t, wantKey, obj.key)
	assert.Equal(t, "application/json", obj.contentType)
	assert.Contains(t, got.URL, wantKey)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(obj.body, &snap))
	assert.Equal(t, "asm-1", snap.AssessmentID)
	assert.Equal(t, 7.7, snap.RiskScore)
	assert.True(t, generatedAt.Equal(snap.GeneratedAt))
	assert.Equal(t, 9.0, snap.RiskAnalysis[assessment.CategoryKYCAML].Score)
}

func TestArchive_GenerationsInSameSecondKeepDistinctObjects(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutAssessment(&assessment.Assessment{
		ID:             "asm-1",
		OrganizationID: "org-1",
		Status:         assessment.StatusCompleted,
		Gaps: []assessment.Gap{{
			ID: "g1", AssessmentID: "asm-1", Category: assessment.CategoryKYCAML,
			Severity: assessment.SeverityHigh, Title: "Stale CDD",
		}},
	})
	repo := memory.NewAssessmentRepository(store)

	now := generatedAt.Add(300 * time.Millisecond)
	clock := application.ClockFunc(func() time.Time { return now })
	engine := analysis.NewService(repo, clock, logging.NewNop())
	obj := &fakeStore{}
	svc := NewService(repo, obj, nil, clock, logging.NewNop())

	_, err := engine.Generate(ctx, "asm-1", analysis.GenerateOptions{})
	require.NoError(t, err)
	first, err := svc.Archive(ctx, "asm-1", "org-1")
	require.NoError(t, err)

	now = generatedAt.Add(500 * time.Millisecond)
	_, err = engine.Generate(ctx, "asm-1", analysis.GenerateOptions{ForceRegenerate: true})
	require.NoError(t, err)
	second, err := svc.Archive(ctx, "asm-1", "org-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, fmt.Sprintf("org-1/asm-1/analysis-%d.json", now.UnixMilli()), second.Key)
}

func TestArchive_Errors(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := setup(t, false)
	_, err := svc.Archive(ctx, "asm-1", "")
	assert.ErrorIs(t, err, apperr.ErrNoAnalysis)

	svc, obj, _ := setup(t, true)
	_, err = svc.Archive(ctx, "asm-1", "org-2")
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)

	_, err = svc.Archive(ctx, "missing", "")
	assert.ErrorIs(t, err, apperr.ErrAssessmentNotFound)

	obj.err = errors.New("bucket gone")
	_, err = svc.Archive(ctx, "asm-1", "org-1")
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))

	svc.Store = nil
	_, err = svc.Archive(ctx, "asm-1", "org-1")
	assert.ErrorIs(t, err, apperr.ErrFeatureDisabled)
}

func TestBriefing(t *testing.T) {
	svc, _, client := setup(t, true)

	b, err := svc.Briefing(context.Background(), "asm-1", "org-1", " DORA ")
	require.NoError(t, err)
	assert.Equal(t, "Overall exposure is high.", b.Text)
	assert.True(t, generatedAt.Equal(b.AnalysisAt))
	assert.Equal(t, generatedAt.Add(time.Hour), b.CreatedAt)

	assert.Equal(t, "asm-1", client.got.AssessmentID)
	assert.Equal(t, "DORA", client.got.Framework)
	assert.Len(t, client.got.StrategyMatrix, 1)
}

func TestBriefing_Errors(t *testing.T) {
	ctx := context.Background()

	svc, _, client := setup(t, true)
	client.err = fmt.Errorf("openai: %w", ai.ErrQuotaExceeded)
	_, err := svc.Briefing(ctx, "asm-1", "", "")
	assert.ErrorIs(t, err, apperr.ErrAIQuotaExceeded)
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))

	client.err = errors.New("tls handshake timeout")
	_, err = svc.Briefing(ctx, "asm-1", "", "")
	assert.ErrorIs(t, err, apperr.ErrAIUnavailable)

	svc, _, _ = setup(t, false)
	_, err = svc.Briefing(ctx, "asm-1", "", "")
	assert.ErrorIs(t, err, apperr.ErrNoAnalysis)

	svc.AI = nil
	_, err = svc.Briefing(ctx, "asm-1", "", "")
	assert.ErrorIs(t, err, apperr.ErrFeatureDisabled)
}
