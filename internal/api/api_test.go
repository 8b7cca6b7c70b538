package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/codeboost/internal/content"
	"github.com/starford/codeboost/internal/contentservice"
	"github.com/starford/codeboost/internal/newsletter"
	"github.com/starford/codeboost/internal/testutil"
	"github.com/starford/codeboost/internal/theme"
)

// testEnv sets up a temp content root, SQLite DB, service, and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (*contentservice.Service, http.Handler) {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, news *newsletter.Client, sseHandler http.Handler) (*contentservice.Service, http.Handler) {
	t.Helper()
	_, store := testutil.TestContentRoot(t)
	db := testutil.TestDB(t)
	svc := contentservice.NewService(store, db, content.NewLoader(10, nil), 1000)
	router := NewRouter(svc, news, theme.DefaultConfig(), authEnabled, authToken, sseHandler)
	return svc, router
}

func do(t *testing.T, router http.Handler, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createPost(t *testing.T, router http.Handler, path, title string, tags ...string) ContentDetail {
	t.Helper()
	w := do(t, router, http.MethodPost, "/content", CreateContentRequest{
		Path:    path,
		Content: testutil.Post(title, "2021-03-01", "Go", tags...),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create %s = %d, body = %s", path, w.Code, w.Body.String())
	}
	var d ContentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	return d
}

func TestCreateAndGetContent(t *testing.T) {
	_, router := testEnv(t, "")
	created := createPost(t, router, "tutorials/hello.md", "Hello", "intro")

	if created.Slug != "/hello/" || created.URL != "/hello/" {
		t.Errorf("slug = %q, url = %q", created.Slug, created.URL)
	}

	w := do(t, router, http.MethodGet, "/content/tutorials/hello.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if etag := w.Header().Get("ETag"); etag != `"`+created.Checksum+`"` {
		t.Errorf("ETag = %q, want quoted checksum", etag)
	}
	var d ContentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Frontmatter.Title != "Hello" || d.Frontmatter.Category != "Go" {
		t.Errorf("frontmatter = %+v", d.Frontmatter)
	}
	if len(d.TOC) != 1 || d.TOC[0].ID != "header-1" {
		t.Errorf("toc = %+v", d.TOC)
	}
}

func TestGetBySlug(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/hello.md", "Hello")

	for _, target := range []string{"/posts/hello", "/posts/hello/"} {
		w := do(t, router, http.MethodGet, target, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", target, w.Code)
		}
	}
	if w := do(t, router, http.MethodGet, "/posts/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing slug = %d, want 404", w.Code)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/dup.md", "Dup")

	w := do(t, router, http.MethodPost, "/content", CreateContentRequest{Path: "tutorials/dup.md", Content: "again"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestCreateInvalid(t *testing.T) {
	_, router := testEnv(t, "")

	tests := []struct {
		name string
		body any
	}{
		{"missing content", CreateContentRequest{Path: "tutorials/a.md"}},
		{"not markdown", CreateContentRequest{Path: "tutorials/a.txt", Content: "x"}},
		{"bad date", CreateContentRequest{Path: "tutorials/a.md", Content: "---\ndate: never\n---\nbody"}},
		{"malformed frontmatter", CreateContentRequest{Path: "tutorials/a.md", Content: "---\ntitle: [unclosed\ntags: {\n---\nbody\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, router, http.MethodPost, "/content", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateMalformedFrontmatter(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/a.md", "A")

	w := do(t, router, http.MethodPut, "/content/tutorials/a.md", UpdateContentRequest{Content: "---\ntitle: [unclosed\n---\nbody\n"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/content/tutorials/a.md", nil)
	var d ContentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Frontmatter.Title != "A" {
		t.Errorf("title after rejected update = %q, want A", d.Frontmatter.Title)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	_, router := testEnv(t, "")
	created := createPost(t, router, "tutorials/lock.md", "Lock")

	update := UpdateContentRequest{Content: testutil.Post("Lock v2", "2021-03-02", "Go")}
	w := do(t, router, http.MethodPut, "/content/tutorials/lock.md", update, "If-Match", `"`+created.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}

	// The checksum is stale now.
	w = do(t, router, http.MethodPut, "/content/tutorials/lock.md", update, "If-Match", created.Checksum)
	if w.Code != http.StatusConflict {
		t.Errorf("update with stale checksum = %d, want 409", w.Code)
	}
}

func TestUpdateWithETagFromGet(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/etag.md", "ETag")

	etag := do(t, router, http.MethodGet, "/content/tutorials/etag.md", nil).Header().Get("ETag")
	update := UpdateContentRequest{Content: testutil.Post("ETag v2", "2021-03-02", "Go")}
	if w := do(t, router, http.MethodPut, "/content/tutorials/etag.md", update, "If-Match", "W/"+etag); w.Code != http.StatusOK {
		t.Errorf("update with weak ETag from GET = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/nolock.md", "No Lock")

	w := do(t, router, http.MethodPut, "/content/tutorials/nolock.md", UpdateContentRequest{Content: testutil.Post("Changed", "2021-03-02", "Go")})
	if w.Code != http.StatusOK {
		t.Errorf("update without If-Match = %d, want 200", w.Code)
	}
}

func TestUpdateContent_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPut, "/content/tutorials/ghost.md", UpdateContentRequest{Content: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteContent(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/bye.md", "Bye")

	if w := do(t, router, http.MethodDelete, "/content/tutorials/bye.md", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/content/tutorials/bye.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/content/tutorials/bye.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestMoveContent(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/old.md", "Old")
	createPost(t, router, "tutorials/taken.md", "Taken")

	tests := []struct {
		name string
		req  MoveContentRequest
		want int
	}{
		{"missing to", MoveContentRequest{From: "tutorials/old.md"}, http.StatusBadRequest},
		{"missing source", MoveContentRequest{From: "tutorials/nope.md", To: "tutorials/x.md"}, http.StatusNotFound},
		{"target exists", MoveContentRequest{From: "tutorials/old.md", To: "tutorials/taken.md"}, http.StatusConflict},
		{"not markdown", MoveContentRequest{From: "tutorials/old.md", To: "tutorials/x.txt"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, router, http.MethodPost, "/move", tt.req); w.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	w := do(t, router, http.MethodPost, "/move", MoveContentRequest{From: "tutorials/old.md", To: "tutorials/renamed.md"})
	if w.Code != http.StatusOK {
		t.Fatalf("move = %d, body = %s", w.Code, w.Body.String())
	}
	var d ContentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if d.Slug != "/renamed/" {
		t.Errorf("slug = %q, want /renamed/", d.Slug)
	}
	if w := do(t, router, http.MethodGet, "/posts/old", nil); w.Code != http.StatusNotFound {
		t.Errorf("old slug = %d, want 404", w.Code)
	}
}

func TestListContent(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/a.md", "A", "go")
	createPost(t, router, "tutorials/b.md", "B", "css")

	w := do(t, router, http.MethodGet, "/content?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp ContentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Content) != 2 || resp.Total != 2 {
		t.Errorf("list = %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/content?tag=css", nil)
	resp = ContentListResponse{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Content) != 1 || resp.Content[0].Title != "B" {
		t.Errorf("tag filter = %+v", resp)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/find.md", "Uniquetoken Guide")
	createPost(t, router, "tutorials/other.md", "Other")

	w := do(t, router, http.MethodGet, "/search?q=uniquetoken", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Slug != "/find/" {
		t.Errorf("search results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestTaxonomyEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createPost(t, router, "tutorials/a.md", "A", "Node.js", "maps")
	createPost(t, router, "tutorials/b.md", "B", "Node.js")

	w := do(t, router, http.MethodGet, "/taxonomy", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("taxonomy = %d", w.Code)
	}
	var resp TaxonomyResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Categories) != 1 || resp.Categories[0].Path != "/go" || resp.Categories[0].Count != 2 {
		t.Errorf("categories = %+v", resp.Categories)
	}
	if len(resp.Tags) != 2 || resp.Tags[0].Path != "/tag/node.js" || resp.Tags[0].Count != 2 {
		t.Errorf("tags = %+v", resp.Tags)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router := testEnv(t, "secret123")

	tests := []struct {
		name   string
		target string
		header []string
		want   int
	}{
		{"valid token", "/content", []string{"Authorization", "Bearer secret123"}, http.StatusOK},
		{"missing token", "/content", nil, http.StatusUnauthorized},
		{"wrong token", "/content", []string{"Authorization", "Bearer wrong"}, http.StatusUnauthorized},
		{"taxonomy guarded", "/taxonomy", nil, http.StatusUnauthorized},
		{"search stays public", "/search?q=x", nil, http.StatusOK},
		{"theme stays public", "/theme", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, router, http.MethodGet, tt.target, nil, tt.header...); w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/content", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_Challenge(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/taxonomy", nil, "Authorization", "Basic c2VjcmV0MTIz")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); !strings.HasPrefix(got, "Bearer") {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

// Newsletter tests.

func newsletterEnv(t *testing.T, status int, reply string) (http.Handler, *[]string) {
	t.Helper()
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	_, router := testEnvFull(t, true, "secret", newsletter.New(srv.URL), nil)
	return router, &paths
}

func TestSubscribe(t *testing.T) {
	router, paths := newsletterEnv(t, http.StatusOK, `{"_id":"abc"}`)

	w := do(t, router, http.MethodPost, "/subscribe", SubscribeRequest{Email: "reader@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("subscribe = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SubscribeResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != newsletter.StatusConfirmationSent {
		t.Errorf("status = %q", resp.Status)
	}
	if len(*paths) != 1 || (*paths)[0] != "/api/users" {
		t.Errorf("upstream paths = %v", *paths)
	}
}

func TestSubscribe_InvalidEmail(t *testing.T) {
	router, paths := newsletterEnv(t, http.StatusOK, `{}`)

	w := do(t, router, http.MethodPost, "/subscribe", SubscribeRequest{Email: "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid email = %d, want 400", w.Code)
	}
	if len(*paths) != 0 {
		t.Errorf("invalid email reached upstream: %v", *paths)
	}
}

func TestSubscribe_UpstreamFailure(t *testing.T) {
	router, _ := newsletterEnv(t, http.StatusInternalServerError, `{}`)

	w := do(t, router, http.MethodPost, "/subscribe", SubscribeRequest{Email: "reader@example.com"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("upstream failure = %d, want 502", w.Code)
	}
}

func TestConfirmAndUnsubscribe(t *testing.T) {
	router, paths := newsletterEnv(t, http.StatusOK, `{}`)
	longID := strings.Repeat("a", 24)

	for _, target := range []string{"/confirm", "/unsubscribe"} {
		w := do(t, router, http.MethodPost, target, IDRequest{ID: longID})
		var resp IDResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if w.Code != http.StatusOK || !resp.Sent {
			t.Errorf("%s = %d, sent = %v", target, w.Code, resp.Sent)
		}

		w = do(t, router, http.MethodPost, target, IDRequest{ID: "short"})
		resp = IDResponse{}
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if w.Code != http.StatusOK || resp.Sent {
			t.Errorf("%s with short id = %d, sent = %v", target, w.Code, resp.Sent)
		}
	}

	want := []string{"/api/users/confirm", "/api/users/unsubscribe"}
	if len(*paths) != len(want) {
		t.Fatalf("upstream paths = %v, want %v", *paths, want)
	}
	for i := range want {
		if (*paths)[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, (*paths)[i], want[i])
		}
	}
}

func TestNewsletterRoutesAbsentWithoutClient(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/subscribe", SubscribeRequest{Email: "reader@example.com"})
	if w.Code != http.StatusNotFound && w.Code != http.StatusMethodNotAllowed {
		t.Errorf("subscribe without client = %d", w.Code)
	}
}

// Theme tests.

func TestTheme_DefaultsToConfiguredMode(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/theme", nil)
	var resp ThemeResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Mode != theme.ModeLight || resp.Dark || resp.Palette.Background != "#ffffff" {
		t.Errorf("theme = %+v", resp)
	}
}

func TestTheme_ReadsLegacyCookie(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/theme", nil)
	req.AddCookie(&http.Cookie{Name: theme.DefaultStorageKey, Value: "true"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp ThemeResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Mode != theme.ModeDark || !resp.Dark || resp.Palette.Background != "#1C1E2F" {
		t.Errorf("theme = %+v", resp)
	}
}

func TestTheme_ToggleSetsCookie(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/theme", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ThemeResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Mode != theme.ModeDark {
		t.Errorf("mode after toggle = %q, want dark", resp.Mode)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != theme.DefaultStorageKey || cookies[0].Value != "true" {
		t.Errorf("cookies = %+v", cookies)
	}
}

func TestTheme_SetExplicitMode(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/theme", ThemeRequest{Mode: "light"}); w.Code != http.StatusOK {
		t.Errorf("set light = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/theme", ThemeRequest{Mode: "sepia"}); w.Code != http.StatusBadRequest {
		t.Errorf("set unknown mode = %d, want 400", w.Code)
	}
}

// SSE endpoint tests.

func sseStub() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-r.Context().Done()
	})
}

func TestSSEEvents_Public(t *testing.T) {
	_, router := testEnvFull(t, true, "secret", nil, sseStub())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE = %d, want 200 without a token", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSSEEvents_NotMounted(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/events", nil); w.Code != http.StatusNotFound {
		t.Errorf("events without handler = %d, want 404", w.Code)
	}
}
