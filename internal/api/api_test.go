package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/unpack/internal/analysis"
	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/blobstore"
	"github.com/starford/unpack/internal/conversation"
	"github.com/starford/unpack/internal/discovery"
	"github.com/starford/unpack/internal/extract"
	"github.com/starford/unpack/internal/journal"
	"github.com/starford/unpack/internal/llm"
	"github.com/starford/unpack/internal/models"
	"github.com/starford/unpack/internal/overview"
	"github.com/starford/unpack/internal/pipeline"
	"github.com/starford/unpack/internal/sse"
	"github.com/starford/unpack/internal/testutil"
)

// pageText reads the photo bytes as the handwriting. Pages starting with
// "blurry" come back with a low confidence.
type pageText struct{}

func (pageText) Extract(_ context.Context, p extract.Page) (models.ExtractionResult, error) {
	text := string(p.Data)
	if strings.HasPrefix(text, "blurry") {
		return models.ExtractionResult{Text: text, Confidence: 0.3}, nil
	}
	return models.ExtractionResult{Text: text, Confidence: 0.9}, nil
}

type apiEnv struct {
	router http.Handler
	photos http.Handler
}

// testEnv builds the API over a temp database and photo store.
// An empty authToken means disabled mode; otherwise the token maps to user "u1".
func testEnv(t *testing.T, authToken string) *apiEnv {
	t.Helper()
	return testEnvWithEvents(t, authToken, nil)
}

func testEnvWithEvents(t *testing.T, authToken string, events EventStreamer) *apiEnv {
	t.Helper()
	db := testutil.TestDB(t)
	photos := testutil.TestPhotos(t)
	logger := testutil.QuietLogger()
	offline := llm.New(llm.Config{})
	signer := blobstore.NewSigner([]byte("test-key"), "http://test/photos", 0)

	orch := pipeline.New(pageText{},
		overview.NewGenerator(offline, logger),
		discovery.NewDiscoverer(offline, logger),
		db, pipeline.WithAnnotator(analysis.NewAnnotator(offline, logger)), pipeline.WithLogger(logger))
	engine := conversation.NewEngine(db,
		conversation.NewHeuristicResponder(conversation.PickerFunc(func(int) int { return 0 })),
		conversation.WithLogger(logger))
	svc := journal.NewService(db, photos, signer, orch, engine, journal.WithLogger(logger))

	users := NewStaticDirectory(map[string]string{})
	if authToken != "" {
		users = NewStaticDirectory(map[string]string{authToken: "u1"})
	}

	pr := chi.NewRouter()
	pr.Get("/photos/*", NewPhotoHandler(photos, signer).ServeFile)

	return &apiEnv{
		router: NewRouter(svc, authToken != "", users, events),
		photos: pr,
	}
}

func (e *apiEnv) do(t *testing.T, owner, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) upload(t *testing.T, owner, contentType, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="page.jpg"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body = %s)", v, err, w.Body.String())
	}
	return v
}

// capture uploads a page and saves it, returning the outcome.
func (e *apiEnv) capture(t *testing.T, owner, text string) pipeline.Outcome {
	t.Helper()
	w := e.upload(t, owner, "image/jpeg", text)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	photo := decode[PhotoUploadResponse](t, w)

	w = e.do(t, owner, http.MethodPost, "/captures/process", ProcessRequest{Photos: []string{photo.Key}})
	if w.Code != http.StatusOK {
		t.Fatalf("process = %d, body = %s", w.Code, w.Body.String())
	}
	draft := decode[DraftRequest](t, w)

	w = e.do(t, owner, http.MethodPost, "/captures/finish", draft)
	if w.Code != http.StatusCreated {
		t.Fatalf("finish = %d, body = %s", w.Code, w.Body.String())
	}
	return decode[pipeline.Outcome](t, w)
}

func TestCaptureFlow(t *testing.T) {
	e := testEnv(t, "")
	out := e.capture(t, "", "Rain all day. I finally called my sister.")

	if out.Next != pipeline.NextConversation {
		t.Errorf("next = %q, want conversation", out.Next)
	}
	if out.Entry.OwnerID != DefaultOwner {
		t.Errorf("owner = %q, want %q", out.Entry.OwnerID, DefaultOwner)
	}
	if len(out.Tangents) == 0 || out.TangentID != out.Tangents[0].ID {
		t.Fatalf("tangent_id = %q, tangents = %+v", out.TangentID, out.Tangents)
	}

	w := e.do(t, "", http.MethodGet, "/entries/"+out.Entry.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get entry = %d", w.Code)
	}
	detail := decode[EntryDetail](t, w)
	if len(detail.PhotoURLs) != 1 || !strings.HasPrefix(detail.PhotoURLs[0], "http://test/photos/images/local/") {
		t.Errorf("photo urls = %v", detail.PhotoURLs)
	}
	if len(detail.Tangents) != len(out.Tangents) {
		t.Errorf("tangents = %d, want %d", len(detail.Tangents), len(out.Tangents))
	}
}

func TestStepwiseCapture(t *testing.T) {
	e := testEnv(t, "")
	photo := decode[PhotoUploadResponse](t, e.upload(t, "", "image/png", "Walked the dog by the river."))

	w := e.do(t, "", http.MethodPost, "/captures/extract", PhotosRequest{Photos: []string{photo.Key}})
	if w.Code != http.StatusOK {
		t.Fatalf("extract = %d, body = %s", w.Code, w.Body.String())
	}
	ex := decode[ExtractionResponse](t, w)
	if ex.Route != pipeline.RouteProceed || len(ex.Pages) != 1 {
		t.Errorf("extraction = %+v", ex)
	}

	w = e.do(t, "", http.MethodPost, "/captures/analyze", AnalyzeRequest{Text: ex.Text})
	if w.Code != http.StatusOK {
		t.Fatalf("analyze = %d", w.Code)
	}
	a := decode[AnalysisResponse](t, w)
	if a.Overview != overview.Fallback || len(a.Tangents) != 1 {
		t.Errorf("analysis = %+v", a)
	}
	if a.Insights.Sentiment.Label != models.SentimentNeutral {
		t.Errorf("offline insights = %+v, want neutral", a.Insights)
	}

	w = e.do(t, "", http.MethodPost, "/captures/exit", DraftRequest{
		PhotoKeys:  []string{photo.Key},
		Text:       ex.Text,
		Overview:   a.Overview,
		Confidence: ex.Confidence,
		Tangents:   a.Tangents,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("exit = %d, body = %s", w.Code, w.Body.String())
	}
	out := decode[pipeline.Outcome](t, w)
	if out.Next != pipeline.NextHome || out.TangentID != "" {
		t.Errorf("exit outcome = %+v", out)
	}
	// A draft posted without insights is saved with neutral ones.
	if s := out.Entry.Insights.Sentiment; s.Label != models.SentimentNeutral || s.Score != models.NeutralScore {
		t.Errorf("saved sentiment = %+v", s)
	}
}

func TestProcess_ManualReview(t *testing.T) {
	e := testEnv(t, "")
	photo := decode[PhotoUploadResponse](t, e.upload(t, "", "image/jpeg", "blurry [unclear] scrawl"))

	w := e.do(t, "", http.MethodPost, "/captures/process", ProcessRequest{Photos: []string{photo.Key}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("process without correction = %d, want 422", w.Code)
	}

	w = e.do(t, "", http.MethodPost, "/captures/process", ProcessRequest{
		Photos:        []string{photo.Key},
		CorrectedText: "Blurry morning, clear head by noon.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("process with correction = %d, body = %s", w.Code, w.Body.String())
	}
	if d := decode[DraftRequest](t, w); d.Text != "Blurry morning, clear head by noon." {
		t.Errorf("text = %q", d.Text)
	}
}

func TestCaptureValidation(t *testing.T) {
	e := testEnv(t, "")
	cases := []struct {
		path string
		body any
	}{
		{"/captures/extract", PhotosRequest{}},
		{"/captures/analyze", AnalyzeRequest{Text: ""}},
		{"/captures/finish", DraftRequest{Text: "hi"}},
		{"/captures/finish", DraftRequest{Text: "hi", Tangents: make([]models.TangentCandidate, discovery.MaxTangents+1)}},
	}
	for _, c := range cases {
		if w := e.do(t, "", http.MethodPost, c.path, c.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s %+v = %d, want 400", c.path, c.body, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/captures/analyze", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json = %d, want 400", w.Code)
	}
}

func TestCaptureForeignPhoto(t *testing.T) {
	e := testEnv(t, "")
	photo := decode[PhotoUploadResponse](t, e.upload(t, "alice", "image/jpeg", "alice's page"))

	w := e.do(t, "bob", http.MethodPost, "/captures/extract", PhotosRequest{Photos: []string{photo.Key}})
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign photo = %d, want 403", w.Code)
	}
}

func TestCancelCapture_NoneRunning(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, "", http.MethodPost, "/captures/cancel", nil); w.Code != http.StatusNotFound {
		t.Errorf("cancel = %d, want 404", w.Code)
	}
}

func TestUploadPhoto_UnsupportedType(t *testing.T) {
	e := testEnv(t, "")
	w := e.upload(t, "", "text/plain", "just text")
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("text upload = %d, want 415", w.Code)
	}
}

func TestUploadPhoto_MissingFile(t *testing.T) {
	e := testEnv(t, "")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "x")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/photos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file = %d, want 400", w.Code)
	}
}

func TestServePhoto_Signed(t *testing.T) {
	e := testEnv(t, "")
	photo := decode[PhotoUploadResponse](t, e.upload(t, "", "image/jpeg", "page bytes"))

	req := httptest.NewRequest(http.MethodGet, photo.URL, nil)
	w := httptest.NewRecorder()
	e.photos.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("serve = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "page bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("content-type = %q", ct)
	}
	etag := w.Header().Get("ETag")
	if etag != `"`+photo.Checksum+`"` {
		t.Errorf("etag = %q, want checksum %q", etag, photo.Checksum)
	}

	req = httptest.NewRequest(http.MethodGet, photo.URL, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	e.photos.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", w.Code)
	}
}

func TestServePhoto_BadSignature(t *testing.T) {
	e := testEnv(t, "")
	photo := decode[PhotoUploadResponse](t, e.upload(t, "", "image/jpeg", "page bytes"))

	tampered := photo.URL[:len(photo.URL)-4] + "beef"
	w := httptest.NewRecorder()
	e.photos.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tampered, nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("tampered = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	e.photos.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/photos/"+photo.Key, nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("unsigned = %d, want 403", w.Code)
	}
}

func TestListAndDeleteEntries(t *testing.T) {
	e := testEnv(t, "")
	first := e.capture(t, "", "Monday felt long.")
	e.capture(t, "", "Tuesday felt short.")
	e.capture(t, "someone-else", "Not mine.")

	w := e.do(t, "", http.MethodGet, "/entries?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	if got := decode[EntryListResponse](t, w); len(got.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(got.Entries))
	}

	if w := e.do(t, "someone-else", http.MethodDelete, "/entries/"+first.Entry.ID, nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign delete = %d, want 403", w.Code)
	}
	if w := e.do(t, "", http.MethodDelete, "/entries/"+first.Entry.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := e.do(t, "", http.MethodGet, "/entries/"+first.Entry.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := e.do(t, "", http.MethodGet, "/tangents/"+first.TangentID, nil); w.Code != http.StatusNotFound {
		t.Errorf("tangent after entry delete = %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	e := testEnv(t, "")
	e.capture(t, "", "The lighthouse keeper waved at me.")
	e.capture(t, "", "Groceries and laundry.")

	w := e.do(t, "", http.MethodGet, "/search?q=lighthouse", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[SearchResponse](t, w); len(got.Results) != 1 {
		t.Errorf("results = %d, want 1", len(got.Results))
	}
}

func TestSearchMissingQuery(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, "", http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestConversationFlow(t *testing.T) {
	e := testEnv(t, "")
	out := e.capture(t, "", "I worry about the move next month.")
	base := "/tangents/" + out.TangentID

	w := e.do(t, "", http.MethodPost, base+"/open", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("open = %d, body = %s", w.Code, w.Body.String())
	}
	c := decode[ConversationResponse](t, w)
	if !c.Tangent.Interacted {
		t.Error("tangent should be marked interacted")
	}
	if len(c.Messages) != 1 || c.Messages[0].Role != models.RoleAI {
		t.Fatalf("seeded messages = %+v", c.Messages)
	}
	if c.State != conversation.AwaitingUser.String() {
		t.Errorf("state = %q", c.State)
	}

	// Opening again does not seed twice.
	w = e.do(t, "", http.MethodPost, base+"/open", nil)
	if got := decode[ConversationResponse](t, w); len(got.Messages) != 1 {
		t.Errorf("messages after reopen = %d, want 1", len(got.Messages))
	}

	w = e.do(t, "", http.MethodPost, base+"/messages", SendMessageRequest{Content: "I feel anxious about it.", ClientID: "c-1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("send = %d, body = %s", w.Code, w.Body.String())
	}
	turn := decode[TurnResponse](t, w)
	if turn.Message.Role != models.RoleUser || turn.Message.ClientID != "c-1" {
		t.Errorf("user message = %+v", turn.Message)
	}
	if turn.Reply.Role != models.RoleAI || turn.Reply.Content == "" {
		t.Errorf("reply = %+v", turn.Reply)
	}

	w = e.do(t, "", http.MethodGet, base+"/messages", nil)
	if got := decode[ConversationResponse](t, w); len(got.Messages) != 3 {
		t.Errorf("history = %d, want 3", len(got.Messages))
	}

	// Nothing to retry once the reply is stored.
	if w := e.do(t, "", http.MethodPost, base+"/retry", nil); w.Code != http.StatusConflict {
		t.Errorf("retry = %d, want 409", w.Code)
	}

	if w := e.do(t, "", http.MethodPost, base+"/messages", SendMessageRequest{Content: "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("empty message = %d, want 400", w.Code)
	}

	if w := e.do(t, "", http.MethodDelete, base, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete tangent = %d, want 204", w.Code)
	}
	if w := e.do(t, "", http.MethodGet, base, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestSendBeforeOpen(t *testing.T) {
	e := testEnv(t, "")
	out := e.capture(t, "", "Quiet evening.")
	w := e.do(t, "", http.MethodPost, "/tangents/"+out.TangentID+"/messages", SendMessageRequest{Content: "hello"})
	if w.Code != http.StatusConflict {
		t.Errorf("send to unseeded = %d, want 409", w.Code)
	}
}

func TestTangentOwnership(t *testing.T) {
	e := testEnv(t, "")
	out := e.capture(t, "alice", "Alice's private thoughts.")
	if w := e.do(t, "bob", http.MethodPost, "/tangents/"+out.TangentID+"/open", nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign open = %d, want 403", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	e := testEnv(t, "secret123")

	w := e.do(t, "", http.MethodGet, "/entries", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	e := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_IgnoresOwnerHeaderWhenEnabled(t *testing.T) {
	var got string
	h := AuthMiddleware(true, NewStaticDirectory(map[string]string{"secret123": "u1"}))(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { got = OwnerFrom(r.Context()) }))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	req.Header.Set("X-Owner-ID", "mallory")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "u1" {
		t.Errorf("owner = %q, want u1", got)
	}
}

func TestStaticDirectory(t *testing.T) {
	ctx := context.Background()
	d := NewStaticDirectory(nil)
	if _, err := d.FindByToken(ctx, "t"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown token err = %v", err)
	}
	if err := d.Create(ctx, "t", User{ID: "u9"}); err != nil {
		t.Fatal(err)
	}
	if err := d.Create(ctx, "t", User{ID: "u10"}); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate token err = %v", err)
	}
	u, err := d.FindByToken(ctx, "t")
	if err != nil || u.ID != "u9" {
		t.Errorf("FindByToken = %+v, %v", u, err)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("entry x: %w", apperr.ErrForbidden), http.StatusForbidden},
		{apperr.ErrInvalidState, http.StatusConflict},
		{apperr.ErrBusy, http.StatusTooManyRequests},
		{apperr.ErrExtraction, http.StatusBadGateway},
		{apperr.ErrResponse, http.StatusBadGateway},
		{pipeline.ErrReviewRequired, http.StatusUnprocessableEntity},
		{conversation.ErrEmptyMessage, http.StatusBadRequest},
		{blobstore.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{context.Canceled, statusClientClosedRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got, _ := statusFor(c.err); got != c.want {
			t.Errorf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	broker := sse.NewBroker(time.Hour)
	t.Cleanup(broker.Close)
	e := testEnvWithEvents(t, "secret", broker)

	w := e.do(t, "", http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	broker := sse.NewBroker(time.Hour)
	t.Cleanup(broker.Close)
	e := testEnvWithEvents(t, "tok", broker)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}
}

func TestSSEEvents_NotMountedWithoutBroker(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, "", http.MethodGet, "/events", nil); w.Code != http.StatusNotFound {
		t.Errorf("events without broker = %d, want 404", w.Code)
	}
}
