package headhunter

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type fakeHH struct {
	mu       sync.Mutex
	pages    [][]map[string]any
	details  map[string]map[string]any
	auth     []string
	requests []string
	gzip     bool
}

func (f *fakeHH) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.requests = append(f.requests, r.URL.RequestURI())
	f.mu.Unlock()

	var payload any
	switch {
	case r.URL.Path == SearchPath:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page >= len(f.pages) {
			http.Error(w, "no such page", http.StatusBadRequest)
			return
		}
		payload = map[string]any{
			"items":    f.pages[page],
			"found":    10,
			"pages":    len(f.pages),
			"page":     page,
			"per_page": 2,
		}
	case strings.HasPrefix(r.URL.Path, SearchPath+"/"):
		detail, ok := f.details[strings.TrimPrefix(r.URL.Path, SearchPath+"/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		payload = detail
	default:
		http.NotFound(w, r)
		return
	}

	if f.gzip {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_ = json.NewEncoder(gz).Encode(payload)
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(context.Background(), zap.NewNop(), token)
	c.APIURL = srv.URL
	c.HTTPClient = srv.Client()
	return c
}

func item(id, name string) map[string]any {
	return map[string]any{"id": id, "name": name, "snippet": map[string]any{"requirement": "Python and SQL"}}
}

func TestSearchFollowsPages(t *testing.T) {
	hh := &fakeHH{
		pages: [][]map[string]any{
			{item("1", "Analyst"), item("2", "Engineer")},
			{item("3", "Designer")},
		},
		gzip: true,
	}
	c := newTestClient(t, hh, "")

	vacancies, err := c.Search(&SearchParams{Text: "analyst"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(vacancies.IDs(), []string{"1", "2", "3"}) {
		t.Fatalf("unexpected vacancies: %v", vacancies.IDs())
	}
	if vacancies.Items[0].Snipet.Requirement != "Python and SQL" {
		t.Fatalf("expected snippet to be decoded, got %+v", vacancies.Items[0])
	}
	if !strings.Contains(hh.requests[0], "text=analyst") || !strings.Contains(hh.requests[0], "per_page=100") {
		t.Fatalf("unexpected query: %s", hh.requests[0])
	}
	for _, auth := range hh.auth {
		if auth != "" {
			t.Fatalf("did not expect authorization without token, got %q", auth)
		}
	}
}

func TestSearchBadStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}), "token")

	if _, err := c.Search(&SearchParams{Text: "x"}); err == nil {
		t.Fatalf("expected error for bad status")
	}
}

func TestGetVacancy(t *testing.T) {
	hh := &fakeHH{details: map[string]map[string]any{
		"7": {"id": "7", "name": "Go Developer", "key_skills": []map[string]any{{"name": "Go"}}},
	}}
	c := newTestClient(t, hh, "secret")

	vacancy, err := c.GetVacancy("7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vacancy.Name != "Go Developer" || len(vacancy.KeySkills) != 1 {
		t.Fatalf("unexpected vacancy: %+v", vacancy)
	}
	if hh.auth[0] != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", hh.auth[0])
	}

	if _, err := c.GetVacancy("8"); err == nil {
		t.Fatalf("expected error for missing vacancy")
	}
	if _, err := c.GetVacancy(" "); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

type stubSkills struct {
	calls int
}

func (s *stubSkills) ExtractSkills(_ context.Context, text string) ([]string, error) {
	s.calls++
	if strings.Contains(text, "Python") {
		return []string{"Python"}, nil
	}
	return nil, nil
}

func TestImport(t *testing.T) {
	hh := &fakeHH{
		pages: [][]map[string]any{
			{item("1", "Analyst"), item("2", "Engineer")},
			{item("3", "Designer")},
		},
		details: map[string]map[string]any{
			"1": {
				"id":                 "1",
				"name":               "Data Analyst",
				"key_skills":         []map[string]any{{"name": "SQL"}, {"name": "Excel"}},
				"professional_roles": []map[string]any{{"id": "156", "name": "Data Analyst"}},
			},
		},
	}
	c := newTestClient(t, hh, "")
	skills := &stubSkills{}

	jds, err := c.Import(&SearchParams{Text: "analyst"}, 2, skills)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(jds) != 2 {
		t.Fatalf("expected limit to apply, got %d jds", len(jds))
	}
	if jds[0].ID != "HH1" || !reflect.DeepEqual(jds[0].Skills, []string{"SQL", "Excel"}) || !reflect.DeepEqual(jds[0].Roles, []string{"Data Analyst"}) {
		t.Fatalf("unexpected first jd: %+v", jds[0])
	}
	// vacancy 2 has no details, so its snippet feeds the extractor
	if jds[1].ID != "HH2" || !reflect.DeepEqual(jds[1].Skills, []string{"Python"}) {
		t.Fatalf("unexpected second jd: %+v", jds[1])
	}
	if skills.calls != 1 {
		t.Fatalf("expected extractor to run once, got %d", skills.calls)
	}
	for _, req := range hh.requests {
		if strings.Contains(req, "page=1") {
			t.Fatalf("did not expect a second page once the limit was reached: %v", hh.requests)
		}
	}
}
