package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/macrolog/backend/internal/config"
	"github.com/macrolog/backend/pkg/supabase"
)

// aiStub fakes both the chat-completions API and Supabase storage so a
// photo analysis can run end to end against one server.
type aiStub struct {
	server       *httptest.Server
	lastChatReq  []byte
	uploads      []string
	uploadStatus int
}

func newAIStub(t *testing.T, reply string) *aiStub {
	t.Helper()
	stub := &aiStub{uploadStatus: http.StatusOK}
	mux := http.NewServeMux()

	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		stub.lastChatReq = body
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": reply}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/storage/v1/object/", func(w http.ResponseWriter, r *http.Request) {
		stub.uploads = append(stub.uploads, r.URL.Path)
		if stub.uploadStatus != http.StatusOK {
			w.WriteHeader(stub.uploadStatus)
			return
		}
		fmt.Fprint(w, `{"Key":"ok"}`)
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (stub *aiStub) service(apiKey string) AIService {
	cfg := config.AIConfig{APIKey: apiKey, BaseURL: stub.server.URL, Model: "gpt-4o-mini"}
	storage := supabase.NewClient(stub.server.URL, "service-key")
	return NewAIService(cfg, storage, "meal-photos")
}

func TestAnalyzeText_ParsesCleanJSON(t *testing.T) {
	stub := newAIStub(t, `{"description":"Poulet rôti et riz","protein":45,"calories":650,"confidence":0.9}`)
	svc := stub.service("test-key")

	analysis, err := svc.AnalyzeText(context.Background(), "un poulet rôti avec du riz")
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if analysis.Description != "Poulet rôti et riz" {
		t.Errorf("Unexpected description %q", analysis.Description)
	}
	if analysis.Protein != 45 {
		t.Errorf("Expected 45g, got %v", analysis.Protein)
	}
	if analysis.Calories == nil || *analysis.Calories != 650 {
		t.Errorf("Expected 650 kcal, got %v", analysis.Calories)
	}
	if analysis.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %v", analysis.Confidence)
	}
}

func TestAnalyzeText_StripsFencesAndCoercesStrings(t *testing.T) {
	stub := newAIStub(t, "```json\n{\"description\":\"Omelette\",\"protein\":\"38.5\",\"calories\":null,\"confidence\":\"0.7\"}\n```")
	svc := stub.service("test-key")

	analysis, err := svc.AnalyzeText(context.Background(), "une omelette")
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if analysis.Protein != 38.5 {
		t.Errorf("Expected protein coerced from string, got %v", analysis.Protein)
	}
	if analysis.Calories != nil {
		t.Errorf("Expected nil calories for null, got %v", *analysis.Calories)
	}
	if analysis.Confidence != 0.7 {
		t.Errorf("Expected confidence coerced from string, got %v", analysis.Confidence)
	}
}

func TestAnalyzeText_JSONBuriedInProse(t *testing.T) {
	stub := newAIStub(t, `Voici l'analyse : {"description":"Salade César","protein":12,"confidence":0.6} Bon appétit !`)
	svc := stub.service("test-key")

	analysis, err := svc.AnalyzeText(context.Background(), "une salade césar")
	if err != nil {
		t.Fatalf("AnalyzeText failed: %v", err)
	}
	if analysis.Description != "Salade César" {
		t.Errorf("Unexpected description %q", analysis.Description)
	}
	if analysis.Calories != nil {
		t.Error("Expected nil calories when the field is absent")
	}
}

func TestAnalyzeText_RejectsMissingDescription(t *testing.T) {
	stub := newAIStub(t, `{"protein":20,"confidence":0.5}`)
	svc := stub.service("test-key")

	_, err := svc.AnalyzeText(context.Background(), "un truc")
	if !errors.Is(err, ErrAIBadResponse) {
		t.Fatalf("Expected ErrAIBadResponse, got %v", err)
	}
}

func TestAnalyzeText_RejectsNonJSONReply(t *testing.T) {
	stub := newAIStub(t, "Je ne peux pas analyser ce repas.")
	svc := stub.service("test-key")

	_, err := svc.AnalyzeText(context.Background(), "???")
	if !errors.Is(err, ErrAIBadResponse) {
		t.Fatalf("Expected ErrAIBadResponse, got %v", err)
	}
}

func TestAnalyzeText_NoAPIKey(t *testing.T) {
	stub := newAIStub(t, "")
	svc := stub.service("")

	_, err := svc.AnalyzeText(context.Background(), "un steak")
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("Expected ErrAIUnavailable, got %v", err)
	}
	if stub.lastChatReq != nil {
		t.Error("Expected no upstream call without an API key")
	}
}

func TestAnalyzePhoto_UploadsThenAnalyzes(t *testing.T) {
	stub := newAIStub(t, `{"description":"Bol de pâtes","protein":28,"calories":720,"confidence":0.8}`)
	svc := stub.service("test-key")

	photo := []byte("fake-jpeg-bytes")
	result, err := svc.AnalyzePhoto(context.Background(), "user-1", photo, "image/jpeg")
	if err != nil {
		t.Fatalf("AnalyzePhoto failed: %v", err)
	}

	if len(stub.uploads) != 1 {
		t.Fatalf("Expected 1 upload, got %d", len(stub.uploads))
	}
	if !strings.HasPrefix(stub.uploads[0], "/storage/v1/object/meal-photos/user-1/") {
		t.Errorf("Unexpected upload path %q", stub.uploads[0])
	}
	if !strings.HasSuffix(stub.uploads[0], ".jpg") {
		t.Errorf("Expected a .jpg object, got %q", stub.uploads[0])
	}

	wantPrefix := stub.server.URL + "/storage/v1/object/public/meal-photos/user-1/"
	if !strings.HasPrefix(result.PhotoURL, wantPrefix) {
		t.Errorf("Expected public URL under %q, got %q", wantPrefix, result.PhotoURL)
	}
	if result.Analysis.Description != "Bol de pâtes" {
		t.Errorf("Unexpected analysis %+v", result.Analysis)
	}

	chatReq := string(stub.lastChatReq)
	if !strings.Contains(chatReq, `"image_url"`) {
		t.Error("Expected a vision content part in the chat request")
	}
	if !strings.Contains(chatReq, "data:image/jpeg;base64,") {
		t.Error("Expected the photo inlined as a data URL")
	}
}

func TestAnalyzePhoto_UploadFailureStopsAnalysis(t *testing.T) {
	stub := newAIStub(t, `{"description":"ignored","protein":1,"confidence":0.5}`)
	stub.uploadStatus = http.StatusInternalServerError
	svc := stub.service("test-key")

	_, err := svc.AnalyzePhoto(context.Background(), "user-1", []byte("x"), "image/jpeg")
	if err == nil {
		t.Fatal("Expected an error when storage rejects the photo")
	}
	if stub.lastChatReq != nil {
		t.Error("Expected no analysis call after a failed upload")
	}
}
