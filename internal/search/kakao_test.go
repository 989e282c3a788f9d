package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/containerd/errdefs"

	"github.com/ashureev/outing-planner/internal/domain"
)

const keywordBody = `{"documents":[
{"place_name":"National Museum","category_name":"culture > museum","address_name":"Yongsan-gu 137","x":"126.9803","y":"37.5240","phone":"02-2077-9000","place_url":"http://place.map.kakao.com/1","distance":"420"},
{"place_name":"Broken","x":"not-a-number","y":"37.5"},
{"place_name":"Park","category_name":"park","address_name":"","road_address_name":"Road 1","x":"126.99","y":"37.53","distance":""}
],"meta":{"total_count":3}}`

func newTestKakao(t *testing.T, h http.HandlerFunc) *KakaoClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewKakaoClient(KakaoConfig{APIKey: "test-key", BaseURL: srv.URL}, nil)
	if err != nil {
		t.Fatalf("NewKakaoClient failed: %v", err)
	}
	return c
}

func TestNewKakaoClientRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewKakaoClient(KakaoConfig{}, nil)
	if !errdefs.IsInvalidArgument(err) {
		t.Errorf("Expected invalid argument error, got %v", err)
	}
}

func TestKakaoSearchByKeyword(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotQuery map[string][]string
	c := newTestKakao(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(keywordBody))
	})

	near := domain.Point{Longitude: 126.98, Latitude: 37.52}
	venues, err := c.SearchByKeyword(context.Background(), "용산 박물관", &near, 1000, 30)
	if err != nil {
		t.Fatalf("SearchByKeyword failed: %v", err)
	}

	if gotPath != "/search/keyword.json" {
		t.Errorf("Expected keyword path, got %s", gotPath)
	}
	if gotAuth != "KakaoAK test-key" {
		t.Errorf("Expected KakaoAK header, got %q", gotAuth)
	}
	if q := gotQuery["query"]; len(q) != 1 || q[0] != "용산 박물관" {
		t.Errorf("Expected query param, got %v", q)
	}
	if s := gotQuery["size"]; len(s) != 1 || s[0] != "15" {
		t.Errorf("Expected size clamped to 15, got %v", s)
	}
	if r := gotQuery["radius"]; len(r) != 1 || r[0] != "1000" {
		t.Errorf("Expected radius 1000, got %v", r)
	}
	if s := gotQuery["sort"]; len(s) != 1 || s[0] != "distance" {
		t.Errorf("Expected distance sort, got %v", s)
	}

	if len(venues) != 2 {
		t.Fatalf("Expected 2 venues (bad coordinates dropped), got %d", len(venues))
	}
	m := venues[0]
	if m.Name != "National Museum" || m.Longitude != 126.9803 || m.Latitude != 37.5240 {
		t.Errorf("Unexpected venue: %+v", m)
	}
	if m.Distance == nil || *m.Distance != 420 {
		t.Errorf("Expected distance 420, got %v", m.Distance)
	}
	if venues[1].Address != "Road 1" {
		t.Errorf("Expected road address fallback, got %q", venues[1].Address)
	}
	if venues[1].Distance != nil {
		t.Errorf("Expected nil distance, got %v", *venues[1].Distance)
	}
}

func TestKakaoSearchByCategory(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	c := newTestKakao(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/category.json" {
			t.Errorf("Expected category path, got %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"documents":[]}`))
	})

	venues, err := c.SearchByCategory(context.Background(), "FD6", domain.Point{Longitude: 127.0, Latitude: 37.5}, 500, 3)
	if err != nil {
		t.Fatalf("SearchByCategory failed: %v", err)
	}
	if len(venues) != 0 {
		t.Errorf("Expected no venues, got %d", len(venues))
	}
	if gotQuery["category_group_code"][0] != "FD6" {
		t.Errorf("Expected FD6, got %v", gotQuery["category_group_code"])
	}
	if gotQuery["x"][0] != "127" || gotQuery["y"][0] != "37.5" {
		t.Errorf("Expected x=127 y=37.5, got x=%v y=%v", gotQuery["x"], gotQuery["y"])
	}
}

func TestKakaoFindOneNoMatch(t *testing.T) {
	t.Parallel()

	c := newTestKakao(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") != "accuracy" {
			t.Errorf("Expected accuracy sort, got %s", r.URL.Query().Get("sort"))
		}
		_, _ = w.Write([]byte(`{"documents":[]}`))
	})

	v, err := c.FindOne(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if v != nil {
		t.Errorf("Expected nil venue, got %+v", v)
	}
}

func TestKakaoStatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, errdefs.IsUnauthorized},
		{http.StatusForbidden, errdefs.IsPermissionDenied},
		{http.StatusTooManyRequests, errdefs.IsResourceExhausted},
		{http.StatusBadGateway, errdefs.IsUnavailable},
	}
	for _, tt := range tests {
		c := newTestKakao(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		})
		_, err := c.SearchByKeyword(context.Background(), "x", nil, 0, 1)
		if err == nil || !tt.check(err) {
			t.Errorf("status %d: unexpected error class %v", tt.status, err)
		}
	}
}
