package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/videa-app/videa/internal/auth"
	"github.com/videa-app/videa/internal/config"
	"github.com/videa-app/videa/internal/database"
	"github.com/videa-app/videa/internal/ideas"
	"github.com/videa-app/videa/internal/models"
	"github.com/videa-app/videa/internal/testutil"
)

const apiTestSecret = "httpapi-test-secret"

type fakeIdeaService struct {
	generated   *models.VideoIdea
	generateErr error
	saved       models.VideoIdea
	saveErr     error
	listed      []models.VideoIdea
	listErr     error
	deleteErr   error
	recent      []models.VideoIdea

	lastReq       models.IdeaRequest
	lastUserID    string
	lastDeletedID string
}

func (f *fakeIdeaService) Generate(ctx context.Context, req models.IdeaRequest) (*models.VideoIdea, error) {
	f.lastReq = req
	return f.generated, f.generateErr
}

func (f *fakeIdeaService) Save(ctx context.Context, userID string, idea models.VideoIdea) (models.VideoIdea, error) {
	f.lastUserID = userID
	if f.saveErr != nil {
		return models.VideoIdea{}, f.saveErr
	}
	if f.saved.ID == "" {
		return idea, nil
	}
	return f.saved, nil
}

func (f *fakeIdeaService) ListSaved(ctx context.Context, userID string) ([]models.VideoIdea, error) {
	f.lastUserID = userID
	return f.listed, f.listErr
}

func (f *fakeIdeaService) Delete(ctx context.Context, id, userID string) error {
	f.lastDeletedID = id
	f.lastUserID = userID
	return f.deleteErr
}

func (f *fakeIdeaService) Recent(ctx context.Context) []models.VideoIdea {
	return f.recent
}

func newIdeasAPI(svc *fakeIdeaService) *IdeasAPI {
	authSvc := auth.NewService(config.AuthConfig{
		JWTSecret:   apiTestSecret,
		JWTIssuer:   "videa-test",
		JWTAudience: "videa-users",
	}, testutil.NullLogger())
	return NewIdeasAPI(svc, auth.NewMiddleware(authSvc), testutil.NullLogger())
}

func apiToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "videa-test",
		"aud": "videa-users",
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(apiTestSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authedRequest(t *testing.T, method, target, userID string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken(t, userID))
	}
	return req
}

func savedIdeaJSON(t *testing.T, id, title string) []byte {
	t.Helper()
	payload, err := json.Marshal(models.VideoIdea{ID: id, Title: title, Concept: "A concept"})
	if err != nil {
		t.Fatalf("marshal idea: %v", err)
	}
	return payload
}

func TestListIdeas_RequiresLogin(t *testing.T) {
	svc := &fakeIdeaService{}
	api := newIdeasAPI(svc)

	req := authedRequest(t, http.MethodGet, "/api/ideas", "", nil)
	w := httptest.NewRecorder()
	api.authMiddleware.OptionalAuth(api.handleIdeas)(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if got := decodeErrorBody(t, w); got != "You must be logged in to view ideas" {
		t.Errorf("error = %q, want login message", got)
	}
}

func TestListIdeas_ReturnsUserIdeas(t *testing.T) {
	svc := &fakeIdeaService{listed: []models.VideoIdea{{ID: "idea-1", Title: "First"}}}
	api := newIdeasAPI(svc)

	req := authedRequest(t, http.MethodGet, "/api/ideas", "user-42", nil)
	w := httptest.NewRecorder()
	api.authMiddleware.OptionalAuth(api.handleIdeas)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.lastUserID != "user-42" {
		t.Errorf("user id = %q, want user-42", svc.lastUserID)
	}

	var resp struct {
		Ideas []models.VideoIdea `json:"ideas"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Ideas) != 1 || resp.Ideas[0].ID != "idea-1" {
		t.Errorf("ideas = %+v, want single idea-1", resp.Ideas)
	}
}

func TestListIdeas_TableMissing(t *testing.T) {
	svc := &fakeIdeaService{listErr: database.ErrTableMissing}
	api := newIdeasAPI(svc)

	req := authedRequest(t, http.MethodGet, "/api/ideas", "user-42", nil)
	w := httptest.NewRecorder()
	api.authMiddleware.OptionalAuth(api.handleIdeas)(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
	if got := decodeErrorBody(t, w); got != maintenanceMessage {
		t.Errorf("error = %q, want maintenance message", got)
	}
}

func TestSaveIdea(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		body       []byte
		saveErr    error
		wantStatus int
		wantError  string
	}{
		{
			name:       "requires login",
			userID:     "",
			body:       savedIdeaJSON(t, "idea-1", "Title"),
			wantStatus: http.StatusUnauthorized,
			wantError:  "You must be logged in to save ideas",
		},
		{
			name:       "rejects malformed body",
			userID:     "user-42",
			body:       []byte("{not json"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid idea data provided",
		},
		{
			name:       "rejects missing id",
			userID:     "user-42",
			body:       savedIdeaJSON(t, "", "Title"),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid idea data provided",
		},
		{
			name:       "rejects missing title",
			userID:     "user-42",
			body:       savedIdeaJSON(t, "idea-1", ""),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid idea data provided",
		},
		{
			name:       "store unavailable",
			userID:     "user-42",
			body:       savedIdeaJSON(t, "idea-1", "Title"),
			saveErr:    ideas.ErrStoreUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantError:  maintenanceMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeIdeaService{saveErr: tt.saveErr}
			api := newIdeasAPI(svc)

			req := authedRequest(t, http.MethodPost, "/api/ideas", tt.userID, tt.body)
			w := httptest.NewRecorder()
			api.authMiddleware.OptionalAuth(api.handleIdeas)(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := decodeErrorBody(t, w); got != tt.wantError {
				t.Errorf("error = %q, want %q", got, tt.wantError)
			}
		})
	}
}

func TestSaveIdea_Success(t *testing.T) {
	svc := &fakeIdeaService{}
	api := newIdeasAPI(svc)

	req := authedRequest(t, http.MethodPost, "/api/ideas", "user-42", savedIdeaJSON(t, "idea-1", "Title"))
	w := httptest.NewRecorder()
	api.authMiddleware.OptionalAuth(api.handleIdeas)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.lastUserID != "user-42" {
		t.Errorf("user id = %q, want user-42", svc.lastUserID)
	}

	var resp struct {
		Success bool             `json:"success"`
		Data    models.VideoIdea `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Data.ID != "idea-1" {
		t.Errorf("data id = %q, want idea-1", resp.Data.ID)
	}
}

func TestHandleGenerate(t *testing.T) {
	idea := &models.VideoIdea{ID: "idea-gen", Title: "Generated", Region: "US"}
	svc := &fakeIdeaService{generated: idea}
	api := newIdeasAPI(svc)

	body, _ := json.Marshal(models.IdeaRequest{Niche: "tech", Platform: "YouTube", ViralityFactor: 7})
	req := authedRequest(t, http.MethodPost, "/api/ideas/generate", "", body)
	w := httptest.NewRecorder()
	api.authMiddleware.OptionalAuth(api.handleGenerate)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.lastReq.Niche != "tech" {
		t.Errorf("niche = %q, want tech", svc.lastReq.Niche)
	}

	var resp struct {
		Idea models.VideoIdea `json:"idea"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Idea.ID != "idea-gen" {
		t.Errorf("idea id = %q, want idea-gen", resp.Idea.ID)
	}
}

func TestHandleGenerate_Failure(t *testing.T) {
	svc := &fakeIdeaService{generateErr: errors.New("both generation paths failed")}
	api := newIdeasAPI(svc)

	body, _ := json.Marshal(models.IdeaRequest{Niche: "tech"})
	req := authedRequest(t, http.MethodPost, "/api/ideas/generate", "", body)
	w := httptest.NewRecorder()
	api.authMiddleware.OptionalAuth(api.handleGenerate)(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if got := decodeErrorBody(t, w); got != generationFailed {
		t.Errorf("error = %q, want %q", got, generationFailed)
	}
}

func TestHandleGenerate_RejectsBadBody(t *testing.T) {
	api := newIdeasAPI(&fakeIdeaService{})

	req := authedRequest(t, http.MethodPost, "/api/ideas/generate", "", []byte("{broken"))
	w := httptest.NewRecorder()
	api.authMiddleware.OptionalAuth(api.handleGenerate)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleRecent(t *testing.T) {
	svc := &fakeIdeaService{recent: []models.VideoIdea{{ID: "idea-r1"}, {ID: "idea-r2"}}}
	api := newIdeasAPI(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/ideas/recent", nil)
	w := httptest.NewRecorder()
	api.handleRecent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Ideas []models.VideoIdea `json:"ideas"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Ideas) != 2 {
		t.Errorf("ideas = %d, want 2", len(resp.Ideas))
	}
}

func TestDeleteIdea(t *testing.T) {
	svc := &fakeIdeaService{}
	api := newIdeasAPI(svc)

	req := authedRequest(t, http.MethodDelete, "/api/ideas/idea-1", "user-42", nil)
	w := httptest.NewRecorder()
	api.authMiddleware.RequireAuth(api.handleIdeaItem)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.lastDeletedID != "idea-1" {
		t.Errorf("deleted id = %q, want idea-1", svc.lastDeletedID)
	}
	if svc.lastUserID != "user-42" {
		t.Errorf("user id = %q, want user-42", svc.lastUserID)
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
}

func TestDeleteIdea_RequiresAuth(t *testing.T) {
	api := newIdeasAPI(&fakeIdeaService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/ideas/idea-1", nil)
	w := httptest.NewRecorder()
	api.authMiddleware.RequireAuth(api.handleIdeaItem)(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestDeleteIdea_MissingID(t *testing.T) {
	api := newIdeasAPI(&fakeIdeaService{})

	req := authedRequest(t, http.MethodDelete, "/api/ideas/", "user-42", nil)
	w := httptest.NewRecorder()
	api.authMiddleware.RequireAuth(api.handleIdeaItem)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
