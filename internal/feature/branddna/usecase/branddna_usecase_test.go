package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandai_backend/internal/feature/branddna/domain"
	"brandai_backend/internal/feature/branddna/domain/entity"
	"brandai_backend/internal/feature/branddna/usecase"
	"brandai_backend/internal/shared/llmerr"
)

const acmeJSON = `{"name":"Acme","personality":"Bold","colors":"Red, Black","platform":"TikTok","competitors":"Globex"}`

// mockBrandGenerator はBrandGeneratorインターフェースのモック実装です。
type mockBrandGenerator struct {
	mu                    sync.Mutex
	GenerateBrandDNAFunc  func(ctx context.Context, prompt string) (string, error)
	GenerateBrandDNACalls int
}

func (m *mockBrandGenerator) GenerateBrandDNA(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.GenerateBrandDNACalls++
	m.mu.Unlock()
	if m.GenerateBrandDNAFunc != nil {
		return m.GenerateBrandDNAFunc(ctx, prompt)
	}
	return "", errors.New("GenerateBrandDNAFunc is not implemented")
}

// mockSiteFetcher はSiteFetcherインターフェースのモック実装です。
type mockSiteFetcher struct {
	SnapshotFunc func(ctx context.Context, pageURL string) (entity.SiteSnapshot, error)
}

func (m *mockSiteFetcher) Snapshot(ctx context.Context, pageURL string) (entity.SiteSnapshot, error) {
	return m.SnapshotFunc(ctx, pageURL)
}

func TestValidateURL(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "https", input: "https://example.com", expected: "https://example.com"},
		{name: "trim and lower host", input: "  HTTPS://Example.COM/About#team ", expected: "https://example.com/About"},
		{name: "not a url", input: "not a url", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "missing scheme", input: "example.com", wantErr: true},
		{name: "ftp scheme", input: "ftp://example.com", wantErr: true},
		{name: "no host", input: "https://", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := usecase.ValidateURL(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestBrandDNAUsecase_ScrapeBrandInfo(t *testing.T) {
	ctx := context.Background()
	errNetwork := errors.New("connection reset by peer")

	testCases := []struct {
		name          string
		url           string
		response      string
		responseErr   error
		expected      *entity.BrandInfo
		expectedKind  llmerr.Kind
		expectedMsg   string
		expectedCalls int
	}{
		{
			name:          "success: plain json",
			url:           "https://acme.example",
			response:      acmeJSON,
			expected:      &entity.BrandInfo{Name: "Acme", Personality: "Bold", Colors: "Red, Black", Platform: "TikTok", Competitors: "Globex"},
			expectedCalls: 1,
		},
		{
			name:          "success: fenced json",
			url:           "https://acme.example",
			response:      "```json\n" + acmeJSON + "\n```",
			expected:      &entity.BrandInfo{Name: "Acme", Personality: "Bold", Colors: "Red, Black", Platform: "TikTok", Competitors: "Globex"},
			expectedCalls: 1,
		},
		{
			name:          "success: unknown platform defaults to TikTok",
			url:           "https://acme.example",
			response:      `{"name":"Acme","personality":"Bold","colors":"Red","platform":"Facebook","competitors":"Globex"}`,
			expected:      &entity.BrandInfo{Name: "Acme", Personality: "Bold", Colors: "Red", Platform: "TikTok", Competitors: "Globex"},
			expectedCalls: 1,
		},
		{
			name:          "error: invalid url never calls the model",
			url:           "not a url",
			expectedKind:  llmerr.KindValidation,
			expectedMsg:   "Please enter a valid URL (e.g., https://example.com)",
			expectedCalls: 0,
		},
		{
			name:          "error: unparseable response",
			url:           "https://acme.example",
			response:      "I could not access that website.",
			expectedKind:  llmerr.KindMalformedResponse,
			expectedMsg:   "The AI failed to analyze the website URL correctly.",
			expectedCalls: 1,
		},
		{
			name:          "error: missing required field",
			url:           "https://acme.example",
			response:      `{"name":"Acme"}`,
			expectedKind:  llmerr.KindMalformedResponse,
			expectedMsg:   "The AI failed to analyze the website URL correctly.",
			expectedCalls: 1,
		},
		{
			name:          "error: missing credential",
			url:           "https://acme.example",
			responseErr:   llmerr.ErrMissingCredential,
			expectedKind:  llmerr.KindMissingCredential,
			expectedMsg:   "API_KEY environment variable is not set.",
			expectedCalls: 1,
		},
		{
			name:          "error: transport failure surfaced verbatim",
			url:           "https://acme.example",
			responseErr:   errNetwork,
			expectedKind:  llmerr.KindTransport,
			expectedMsg:   "connection reset by peer",
			expectedCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &mockBrandGenerator{
				GenerateBrandDNAFunc: func(ctx context.Context, prompt string) (string, error) {
					return tc.response, tc.responseErr
				},
			}
			uc := usecase.NewBrandDNAUsecase(gen, nil)

			info, err := uc.ScrapeBrandInfo(ctx, tc.url)

			assert.Equal(t, tc.expectedCalls, gen.GenerateBrandDNACalls)
			if tc.expected != nil {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, info)
				return
			}
			require.Error(t, err)
			assert.Nil(t, info)
			assert.Equal(t, tc.expectedMsg, err.Error())
			if tc.expectedKind == llmerr.KindValidation {
				assert.ErrorIs(t, err, domain.ErrInvalidURL)
				return
			}
			var scrapeErr *domain.ScrapeError
			require.ErrorAs(t, err, &scrapeErr)
			assert.Equal(t, tc.expectedKind, scrapeErr.Kind)
		})
	}
}

func TestBrandDNAUsecase_ScrapeBrandInfo_SiteHints(t *testing.T) {
	var gotPrompt string
	gen := &mockBrandGenerator{
		GenerateBrandDNAFunc: func(ctx context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return acmeJSON, nil
		},
	}
	site := &mockSiteFetcher{
		SnapshotFunc: func(ctx context.Context, pageURL string) (entity.SiteSnapshot, error) {
			assert.Equal(t, "https://acme.example", pageURL)
			return entity.SiteSnapshot{Title: "Acme | Bold Tools", ThemeColor: "#ff0000"}, nil
		},
	}

	_, err := usecase.NewBrandDNAUsecase(gen, site).ScrapeBrandInfo(context.Background(), "https://acme.example")

	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "https://acme.example")
	assert.Contains(t, gotPrompt, "- Page title: Acme | Bold Tools")
	assert.Contains(t, gotPrompt, "- Theme color: #ff0000")
}

func TestBrandDNAUsecase_ScrapeBrandInfo_SiteFailureIsIgnored(t *testing.T) {
	var gotPrompt string
	gen := &mockBrandGenerator{
		GenerateBrandDNAFunc: func(ctx context.Context, prompt string) (string, error) {
			gotPrompt = prompt
			return acmeJSON, nil
		},
	}
	site := &mockSiteFetcher{
		SnapshotFunc: func(ctx context.Context, pageURL string) (entity.SiteSnapshot, error) {
			return entity.SiteSnapshot{}, errors.New("403 forbidden")
		},
	}

	info, err := usecase.NewBrandDNAUsecase(gen, site).ScrapeBrandInfo(context.Background(), "https://acme.example")

	require.NoError(t, err)
	assert.Equal(t, "Acme", info.Name)
	assert.False(t, strings.Contains(gotPrompt, "Hints fetched"))
}

// TestBrandDNAUsecase_ScrapeBrandInfo_CallerCancelDoesNotAbortSharedScrape は
// 同じURLを待つ呼び出し元の1つがキャンセルしても、共有中のスクレイピングが継続することを検証します。
func TestBrandDNAUsecase_ScrapeBrandInfo_CallerCancelDoesNotAbortSharedScrape(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var startOnce sync.Once
	gen := &mockBrandGenerator{
		GenerateBrandDNAFunc: func(ctx context.Context, prompt string) (string, error) {
			startOnce.Do(func() { close(started) })
			select {
			case <-release:
				return acmeJSON, nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
	}
	uc := usecase.NewBrandDNAUsecase(gen, nil)

	type result struct {
		info *entity.BrandInfo
		err  error
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	doneA := make(chan result, 1)
	go func() {
		info, err := uc.ScrapeBrandInfo(ctxA, "https://acme.example")
		doneA <- result{info, err}
	}()
	<-started

	doneB := make(chan result, 1)
	go func() {
		info, err := uc.ScrapeBrandInfo(context.Background(), "https://acme.example")
		doneB <- result{info, err}
	}()
	// Bが実行中の呼び出しに合流するのを待つ
	time.Sleep(50 * time.Millisecond)

	cancelA()
	resA := <-doneA
	assert.ErrorIs(t, resA.err, context.Canceled)

	close(release)
	select {
	case resB := <-doneB:
		require.NoError(t, resB.err)
		assert.Equal(t, "Acme", resB.info.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, 1, gen.GenerateBrandDNACalls)
}
