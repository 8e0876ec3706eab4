package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	branddomain "brandai_backend/internal/feature/branddna/domain"
	brand "brandai_backend/internal/feature/branddna/domain/entity"
	critiquedomain "brandai_backend/internal/feature/critique/domain"
	critique "brandai_backend/internal/feature/critique/domain/entity"
	"brandai_backend/internal/feature/workflow/domain"
	"brandai_backend/internal/feature/workflow/domain/entity"
	"brandai_backend/internal/platform/media"
	"brandai_backend/internal/shared/llmerr"
)

// memoryRepository はSessionRepositoryのインメモリ実装です。
type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
	saves    int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{sessions: map[string]entity.Session{}}
}

func (m *memoryRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memoryRepository) Save(ctx context.Context, s *entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.sessions[s.ID] = *s
	return nil
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// mockScraper はBrandScraperインターフェースのモック実装です。
type mockScraper struct {
	ScrapeBrandInfoFunc  func(ctx context.Context, rawURL string) (*brand.BrandInfo, error)
	ScrapeBrandInfoCalls int
}

func (m *mockScraper) ScrapeBrandInfo(ctx context.Context, rawURL string) (*brand.BrandInfo, error) {
	m.ScrapeBrandInfoCalls++
	return m.ScrapeBrandInfoFunc(ctx, rawURL)
}

// mockCritiquer はCritiquerインターフェースのモック実装です。
type mockCritiquer struct {
	GetCritiqueFunc  func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*critique.CritiqueResult, error)
	GetCritiqueCalls int
}

func (m *mockCritiquer) GetCritique(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*critique.CritiqueResult, error) {
	m.GetCritiqueCalls++
	return m.GetCritiqueFunc(ctx, payload, b, description)
}

var (
	acme  = brand.BrandInfo{Name: "Acme", Personality: "Bold", Colors: "Red, Black", Platform: "TikTok", Competitors: "Globex"}
	image = &media.Payload{Filename: "ad.png", MIMEType: "image/png", Data: []byte("png")}
)

func acmeScraper() *mockScraper {
	return &mockScraper{ScrapeBrandInfoFunc: func(ctx context.Context, rawURL string) (*brand.BrandInfo, error) {
		info := acme
		return &info, nil
	}}
}

func deployCritiquer() *mockCritiquer {
	return &mockCritiquer{GetCritiqueFunc: func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*critique.CritiqueResult, error) {
		return &critique.CritiqueResult{Verdict: critique.VerdictDeploy, OverallScore: 0.86}, nil
	}}
}

func newTestUsecase(repo SessionRepository, s BrandScraper, c Critiquer) *workflowUsecase {
	uc := NewWorkflowUsecase(repo, s, c, Config{SessionTTL: time.Hour, RequestTimeout: time.Second})
	ids := 0
	uc.newReqID = func() string {
		ids++
		return "req-" + string(rune('0'+ids))
	}
	return uc
}

func TestWorkflowUsecase_Get_NewSession(t *testing.T) {
	uc := newTestUsecase(newMemoryRepository(), acmeScraper(), deployCritiquer())

	s, err := uc.Get(context.Background(), "sess")

	require.NoError(t, err)
	assert.Equal(t, "sess", s.ID)
	assert.Equal(t, entity.StepURLInput, s.Step)
}

func TestWorkflowUsecase_SubmitURL_InvalidURLNeverCallsNetwork(t *testing.T) {
	repo := newMemoryRepository()
	scraper := acmeScraper()
	uc := newTestUsecase(repo, scraper, deployCritiquer())

	_, err := uc.SubmitURL(context.Background(), "sess", "not a url")

	assert.ErrorIs(t, err, branddomain.ErrInvalidURL)
	assert.Equal(t, "Please enter a valid URL (e.g., https://example.com)", err.Error())
	assert.Equal(t, 0, scraper.ScrapeBrandInfoCalls)
	assert.Equal(t, 0, repo.saves)
}

func TestWorkflowUsecase_SubmitURL_Failure(t *testing.T) {
	scraper := &mockScraper{ScrapeBrandInfoFunc: func(ctx context.Context, rawURL string) (*brand.BrandInfo, error) {
		return nil, branddomain.NewScrapeError(llmerr.KindMalformedResponse, errors.New("bad json"))
	}}
	uc := newTestUsecase(newMemoryRepository(), scraper, deployCritiquer())

	s, err := uc.SubmitURL(context.Background(), "sess", "https://acme.example")

	require.NoError(t, err)
	assert.Equal(t, entity.StepURLInput, s.Step)
	assert.Equal(t, entity.StatusError, s.Scrape.Status)
	assert.Equal(t, "Scraping failed: The AI failed to analyze the website URL correctly.", s.Scrape.Error)
	assert.Nil(t, s.BrandInfo)
}

func TestWorkflowUsecase_SubmitCritique_Validation(t *testing.T) {
	repo := newMemoryRepository()
	critic := deployCritiquer()
	uc := newTestUsecase(repo, acmeScraper(), critic)
	ctx := context.Background()

	_, err := uc.SubmitURL(ctx, "sess", "https://acme.example")
	require.NoError(t, err)
	saves := repo.saves

	_, err = uc.SubmitCritique(ctx, "sess", nil, acme, "A 10s product reveal")
	assert.ErrorIs(t, err, critiquedomain.ErrFileRequired)

	_, err = uc.SubmitCritique(ctx, "sess", image, brand.BrandInfo{}, "")
	assert.ErrorIs(t, err, critiquedomain.ErrMissingFields)

	assert.Equal(t, 0, critic.GetCritiqueCalls)
	assert.Equal(t, saves, repo.saves)
}

func TestWorkflowUsecase_SubmitCritique_BeforeScrape(t *testing.T) {
	critic := deployCritiquer()
	uc := newTestUsecase(newMemoryRepository(), acmeScraper(), critic)

	_, err := uc.SubmitCritique(context.Background(), "sess", image, acme, "desc")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 0, critic.GetCritiqueCalls)
}

func TestWorkflowUsecase_SubmitCritique_Failure(t *testing.T) {
	critic := &mockCritiquer{GetCritiqueFunc: func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*critique.CritiqueResult, error) {
		return nil, critiquedomain.NewAnalysisError(llmerr.KindMissingCredential, llmerr.ErrMissingCredential)
	}}
	uc := newTestUsecase(newMemoryRepository(), acmeScraper(), critic)
	ctx := context.Background()

	_, err := uc.SubmitURL(ctx, "sess", "https://acme.example")
	require.NoError(t, err)

	s, err := uc.SubmitCritique(ctx, "sess", image, acme, "desc")

	require.NoError(t, err)
	assert.Equal(t, entity.StatusError, s.Critique.Status)
	assert.Equal(t, "Analysis failed: API_KEY environment variable is not set.. Check console for details.", s.Critique.Error)
	assert.Nil(t, s.Result)
}

// TestWorkflowUsecase_AcmeScenario はURL入力から批評結果の表示までの一連の流れを検証します。
func TestWorkflowUsecase_AcmeScenario(t *testing.T) {
	repo := newMemoryRepository()
	critic := deployCritiquer()
	uc := newTestUsecase(repo, acmeScraper(), critic)
	ctx := context.Background()

	s, err := uc.SubmitURL(ctx, "sess", "https://acme.example")
	require.NoError(t, err)
	assert.Equal(t, entity.StepCritiqueForm, s.Step)
	require.NotNil(t, s.BrandInfo)
	assert.Equal(t, acme, *s.BrandInfo)

	s, err = uc.SubmitCritique(ctx, "sess", image, *s.BrandInfo, "A 10s product reveal")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, s.Critique.Status)
	require.NotNil(t, s.Result)
	assert.Equal(t, critique.VerdictDeploy, s.Result.Verdict)
	assert.Equal(t, 0.86, s.Result.OverallScore)

	stored, err := repo.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, s.Result, stored.Result)
}

func TestWorkflowUsecase_Reset(t *testing.T) {
	repo := newMemoryRepository()
	uc := newTestUsecase(repo, acmeScraper(), deployCritiquer())
	ctx := context.Background()

	_, err := uc.SubmitURL(ctx, "sess", "https://acme.example")
	require.NoError(t, err)
	_, err = uc.SubmitCritique(ctx, "sess", image, acme, "desc")
	require.NoError(t, err)

	s, err := uc.Reset(ctx, "sess")

	require.NoError(t, err)
	assert.Equal(t, entity.StepURLInput, s.Step)
	assert.Nil(t, s.BrandInfo)
	assert.Nil(t, s.Result)
	assert.Empty(t, s.Scrape.Error)
	assert.Empty(t, s.Critique.Error)
}

func TestWorkflowUsecase_InFlightRejectedAndResetWins(t *testing.T) {
	repo := newMemoryRepository()
	started := make(chan struct{})
	release := make(chan struct{})
	critic := &mockCritiquer{GetCritiqueFunc: func(ctx context.Context, payload *media.Payload, b brand.BrandInfo, description string) (*critique.CritiqueResult, error) {
		close(started)
		<-release
		return &critique.CritiqueResult{Verdict: critique.VerdictKill}, nil
	}}
	uc := NewWorkflowUsecase(repo, acmeScraper(), critic, Config{SessionTTL: time.Hour, RequestTimeout: 5 * time.Second})
	ctx := context.Background()

	_, err := uc.SubmitURL(ctx, "sess", "https://acme.example")
	require.NoError(t, err)

	done := make(chan *entity.Session, 1)
	go func() {
		s, err := uc.SubmitCritique(ctx, "sess", image, acme, "desc")
		assert.NoError(t, err)
		done <- s
	}()
	<-started

	// 処理中は二重送信を拒否する
	_, err = uc.SubmitCritique(ctx, "sess", image, acme, "desc")
	assert.ErrorIs(t, err, domain.ErrRequestInFlight)

	// 処理中にリセットすると、完了した結果は反映されない
	_, err = uc.Reset(ctx, "sess")
	require.NoError(t, err)
	close(release)

	s := <-done
	assert.Equal(t, entity.StepURLInput, s.Step)
	assert.Nil(t, s.Result)
	assert.Equal(t, 1, critic.GetCritiqueCalls)
}

func TestWorkflowUsecase_ExpiredSessionStartsOver(t *testing.T) {
	repo := newMemoryRepository()
	uc := newTestUsecase(repo, acmeScraper(), deployCritiquer())
	ctx := context.Background()

	_, err := uc.SubmitURL(ctx, "sess", "https://acme.example")
	require.NoError(t, err)

	uc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	s, err := uc.Get(ctx, "sess")

	require.NoError(t, err)
	assert.Equal(t, entity.StepURLInput, s.Step)
	assert.Nil(t, s.BrandInfo)
}

func TestKeyedMutex_ReleasesEntries(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	unlock()
	assert.Empty(t, k.locks)
}
