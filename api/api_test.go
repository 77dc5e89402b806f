package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/coursekit/catalog"
	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/engine"
	"github.com/rushteam/coursekit/pipeline"
	"github.com/rushteam/coursekit/service"
	"github.com/rushteam/coursekit/store"
)

var testCourses = []*core.Course{
	{Title: "Intro to Python", URL: "u/intro", Subscribers: 10, Subject: "Web Development", Level: "All Levels"},
	{Title: "Python for Beginners", URL: "u/beginners", Price: 20, IsPaid: true, Subscribers: 300, Subject: "Web Development", Level: "Beginner Level"},
	{Title: "Advanced Cooking", URL: "u/cooking", Price: 15, IsPaid: true, Subscribers: 50, Subject: "Lifestyle", Level: "Expert Level"},
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *APIError       `json:"error"`
}

func newTestRouter(t *testing.T, load engine.LoadFunc, loaded bool, cfg RouterConfig, opts ...service.Option) http.Handler {
	t.Helper()
	holder := engine.NewHolder(load, engine.BuildOptions{})
	if loaded {
		if _, err := holder.Reload(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	cache := store.NewMemoryStore()
	t.Cleanup(func() { _ = cache.Close() })
	svc, err := service.New(holder, append([]service.Option{service.WithCache(cache)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return NewRouter(NewHandler(svc), cfg)
}

func staticLoad(context.Context) ([]*core.Course, *catalog.Report, error) {
	return testCourses, &catalog.Report{Rows: len(testCourses)}, nil
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s: %v (%s)", target, err, rec.Body.String())
		}
	}
	return rec, env
}

func TestRecommendations(t *testing.T) {
	h := newTestRouter(t, staticLoad, true, RouterConfig{CORSOrigins: []string{"*"}})

	tests := []struct {
		name    string
		target  string
		status  int
		mode    string
		items   int
		errCode string
	}{
		{"similar", "/api/v1/recommendations?title=Intro+to+Python&k=1", http.StatusOK, service.ModeSimilar, 1, ""},
		{"fallback", "/api/v1/recommendations?title=python", http.StatusOK, service.ModeKeyword, 2, ""},
		{"missing title", "/api/v1/recommendations", http.StatusBadRequest, "", 0, "VALIDATION_ERROR"},
		{"k not integer", "/api/v1/recommendations?title=x&k=abc", http.StatusBadRequest, "", 0, "VALIDATION_ERROR"},
		{"k too large", "/api/v1/recommendations?title=x&k=1000", http.StatusBadRequest, "", 0, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.errCode != "" {
				if env.Status != "error" || env.Error == nil || env.Error.Code != tt.errCode {
					t.Errorf("error envelope = %+v", env)
				}
				return
			}
			var resp service.Response
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Mode != tt.mode || len(resp.Items) != tt.items {
				t.Errorf("resp = %+v", resp)
			}
			if env.Metadata.Version != 1 {
				t.Errorf("metadata version = %d", env.Metadata.Version)
			}
		})
	}
}

func TestSearchAndAnalytics(t *testing.T) {
	h := newTestRouter(t, staticLoad, true, RouterConfig{})

	rec, env := do(t, h, http.MethodGet, "/api/v1/search?q=PYTHON&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	var resp service.Response
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "Python for Beginners" {
		t.Errorf("search items = %+v", resp.Items)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/analytics")
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", rec.Code)
	}
	var rep struct {
		Courses       int            `json:"courses"`
		CoursesByPaid map[string]int `json:"courses_by_paid"`
	}
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Courses != 3 || rep.CoursesByPaid["true"] != 2 {
		t.Errorf("analytics = %+v (%s)", rep, env.Data)
	}
}

func TestTopQueries(t *testing.T) {
	h := newTestRouter(t, staticLoad, true, RouterConfig{})
	do(t, h, http.MethodGet, "/api/v1/recommendations?title=python")
	do(t, h, http.MethodGet, "/api/v1/recommendations?title=python")
	do(t, h, http.MethodGet, "/api/v1/recommendations?title=cooking")

	rec, env := do(t, h, http.MethodGet, "/api/v1/queries/top?n=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var top []service.QueryCount
	if err := json.Unmarshal(env.Data, &top); err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Query != "python" || top[0].Count != 2 {
		t.Errorf("top = %+v", top)
	}
}

func TestHealthzAndReload(t *testing.T) {
	fail := false
	load := func(ctx context.Context) ([]*core.Course, *catalog.Report, error) {
		if fail {
			return nil, nil, errors.New("disk gone")
		}
		return staticLoad(ctx)
	}
	h := newTestRouter(t, load, false, RouterConfig{})

	if rec, _ := do(t, h, http.MethodGet, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("healthz before load = %d", rec.Code)
	}
	if rec, env := do(t, h, http.MethodGet, "/api/v1/recommendations?title=x"); rec.Code != http.StatusServiceUnavailable || env.Error.Code != core.ErrorCodeUnavailable {
		t.Errorf("recommend before load = %d %+v", rec.Code, env.Error)
	}

	rec, env := do(t, h, http.MethodPost, "/api/v1/admin/reload")
	if rec.Code != http.StatusOK || env.Metadata.Version != 1 {
		t.Fatalf("reload = %d %+v", rec.Code, env)
	}
	if rec, _ := do(t, h, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz after load = %d", rec.Code)
	}

	fail = true
	if rec, _ := do(t, h, http.MethodPost, "/api/v1/admin/reload"); rec.Code != http.StatusInternalServerError {
		t.Errorf("failed reload = %d", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/recommendations?title=Intro+to+Python"); rec.Code != http.StatusOK {
		t.Errorf("recommend after failed reload = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(t, staticLoad, true, RouterConfig{RateLimit: 2, RateLimitWindow: time.Minute})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/search?q=python")
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
	if rec, _ := do(t, h, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("healthz is rate limited: %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(t, staticLoad, true, RouterConfig{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rec.Code)
	}
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{core.ErrTitleNotFound, http.StatusNotFound, core.ErrorCodeNotFound},
		{core.ErrNoSnapshot, http.StatusServiceUnavailable, core.ErrorCodeUnavailable},
		{core.ErrStoreNotSupported, http.StatusNotImplemented, core.ErrorCodeNotSupported},
		{core.NewDomainError(core.ModulePipeline, core.ErrorCodeInvalidInput, "bad"), http.StatusBadRequest, core.ErrorCodeInvalidInput},
		{errors.New("plain"), http.StatusInternalServerError, core.ErrorCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondDomainError(rec, tt.err)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var env envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatal(err)
			}
			if env.Status != "error" || env.Error.Code != tt.code {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestQueryParamsPassThrough(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipelines:
  similar:
    - type: recall.content
    - type: filter.expr
      config:
        expr: '!has(params.paid) || course.is_paid == params.paid'
    - type: rerank.topn
  fallback:
    - type: recall.keyword
    - type: filter.expr
      config:
        expr: '!has(params.max_price) || course.price <= params.max_price'
    - type: rerank.topn
`))
	if err != nil {
		t.Fatal(err)
	}
	h := newTestRouter(t, staticLoad, true, RouterConfig{}, service.WithPipelines(cfg))

	tests := []struct {
		target string
		want   []string
	}{
		{"/api/v1/search?q=python", []string{"Python for Beginners", "Intro to Python"}},
		{"/api/v1/search?q=python&param.max_price=0", []string{"Intro to Python"}},
		{"/api/v1/search?q=python&max_price=0", []string{"Python for Beginners", "Intro to Python"}},
		{"/api/v1/recommendations?title=Intro+to+Python&param.paid=true", []string{"Python for Beginners", "Advanced Cooking"}},
		{"/api/v1/recommendations?title=Python+for+Beginners&param.paid=false", []string{"Intro to Python"}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, env := do(t, h, http.MethodGet, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
			}
			var resp service.Response
			if err := json.Unmarshal(env.Data, &resp); err != nil {
				t.Fatal(err)
			}
			got := make([]string, len(resp.Items))
			for i, it := range resp.Items {
				got[i] = it.Title
			}
			if len(got) != len(tt.want) {
				t.Fatalf("titles = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("titles = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestParamValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"10", 10.0},
		{"2.5", 2.5},
		{"true", true},
		{"false", false},
		{"NaN", "NaN"},
		{"Web Development", "Web Development"},
	}
	for _, tt := range tests {
		if got := paramValue(tt.raw); got != tt.want {
			t.Errorf("paramValue(%q) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}
