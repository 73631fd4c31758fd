package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medisense/internal/domain"
	"medisense/internal/llm"
	"medisense/internal/repository"
	"medisense/internal/service"
)

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

type blockingResolver struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingResolver) Resolve(context.Context, string, string) string {
	close(b.started)
	<-b.release
	return "done"
}

func newTestRouter(t *testing.T, resolver service.Resolver, apiKey string, limiter service.MessageRateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	tokens := service.NewConversationTokenService("test-secret")
	convSvc := service.NewConversationService(store.Conversations(), store.Messages(), resolver, nil, apiKey, time.Hour, zap.NewNop())
	return NewRouter(
		zap.NewNop(),
		NewSymptomHandler(zap.NewNop(), resolver, apiKey),
		NewChatHandler(zap.NewNop(), convSvc, tokens),
		tokens,
		limiter,
	)
}

func newPipelineResolver(client llm.TextGenerationClient) *service.SymptomResolver {
	gen := service.NewRemoteGenerator(client, domain.DefaultGenerationParameters(), time.Second, zap.NewNop())
	return service.NewSymptomResolver(gen, service.NewFallbackSynthesizer(), zap.NewNop())
}

func doJSON(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type createConversationResponse struct {
	Conversation domain.Conversation `json:"conversation"`
	Token        string              `json:"token"`
}

func startConversation(t *testing.T, r http.Handler) createConversationResponse {
	t.Helper()
	rec := doJSON(r, http.MethodPost, "/conversations", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out createConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out
}

func TestSymptomHandlerResolve(t *testing.T) {
	r := newTestRouter(t, newPipelineResolver(&llm.MockClient{}), "", nil)

	rec := doJSON(r, http.MethodPost, "/symptoms/resolve", "", gin.H{"message": "What's the weather today?"})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, service.RedirectResponse, out.Response)

	rec = doJSON(r, http.MethodPost, "/symptoms/resolve", "", gin.H{"message": "I have a fever"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.Response, service.OfflineNotice)
	assert.Contains(t, out.Response, service.DisclaimerMarker)
}

func TestSymptomHandlerResolve_InvalidBody(t *testing.T) {
	r := newTestRouter(t, newPipelineResolver(&llm.MockClient{}), "", nil)
	req := httptest.NewRequest(http.MethodPost, "/symptoms/resolve", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSymptomHandlerResolve_EmptyMessageRedirects(t *testing.T) {
	client := &llm.MockClient{}
	r := newTestRouter(t, newPipelineResolver(client), "hf_key", nil)

	for _, body := range []gin.H{{"message": ""}, {}} {
		rec := doJSON(r, http.MethodPost, "/symptoms/resolve", "", body)
		require.Equal(t, http.StatusOK, rec.Code)
		var out struct {
			Response string `json:"response"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, service.RedirectResponse, out.Response)
	}
	assert.Zero(t, client.Calls())
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name      string
		apiKey    string
		generator string
	}{
		{name: "with key", apiKey: "hf_key", generator: "remote"},
		{name: "empty key", apiKey: "", generator: "offline"},
		{name: "blank key", apiKey: "   ", generator: "offline"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(t, newPipelineResolver(&llm.MockClient{}), tc.apiKey, nil)
			rec := doJSON(r, http.MethodGet, "/healthz", "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"status":"ok","generator":"`+tc.generator+`"}`, rec.Body.String())
		})
	}
}

func TestChatHandler_ConversationFlow(t *testing.T) {
	client := &llm.MockClient{Records: []domain.GenerationRecord{llm.Text("User: x\nAssistant: Take rest and hydrate.")}}
	r := newTestRouter(t, newPipelineResolver(client), "hf_key", nil)
	conv := startConversation(t, r)
	path := "/conversations/" + conv.Conversation.ID + "/messages"

	rec := doJSON(r, http.MethodPost, path, conv.Token, gin.H{"content": "I have a fever"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var posted struct {
		UserMessage      domain.ChatMessage `json:"user_message"`
		AssistantMessage domain.ChatMessage `json:"assistant_message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posted))
	assert.True(t, posted.UserMessage.IsUser)
	assert.Equal(t, "Take rest and hydrate.", posted.AssistantMessage.Content)

	rec = doJSON(r, http.MethodGet, path, conv.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Messages, 2)
	assert.Equal(t, "I have a fever", listed.Messages[0].Content)
}

func TestChatHandler_RequiresToken(t *testing.T) {
	r := newTestRouter(t, newPipelineResolver(&llm.MockClient{}), "", nil)
	conv := startConversation(t, r)

	rec := doJSON(r, http.MethodPost, "/conversations/"+conv.Conversation.ID+"/messages", "", gin.H{"content": "fever"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := startConversation(t, r)
	rec = doJSON(r, http.MethodGet, "/conversations/"+conv.Conversation.ID+"/messages", other.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatHandler_InvalidContent(t *testing.T) {
	r := newTestRouter(t, newPipelineResolver(&llm.MockClient{}), "", nil)
	conv := startConversation(t, r)
	path := "/conversations/" + conv.Conversation.ID + "/messages"

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, path, conv.Token, gin.H{}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, path, conv.Token, gin.H{"content": "   "}).Code)
}

func TestChatHandler_RateLimited(t *testing.T) {
	r := newTestRouter(t, newPipelineResolver(&llm.MockClient{}), "", denyAllLimiter{})
	conv := startConversation(t, r)

	rec := doJSON(r, http.MethodPost, "/conversations/"+conv.Conversation.ID+"/messages", conv.Token, gin.H{"content": "fever"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestChatHandler_BusyConversation(t *testing.T) {
	resolver := &blockingResolver{started: make(chan struct{}), release: make(chan struct{})}
	r := newTestRouter(t, resolver, "", nil)
	conv := startConversation(t, r)
	path := "/conversations/" + conv.Conversation.ID + "/messages"

	done := make(chan int)
	go func() {
		done <- doJSON(r, http.MethodPost, path, conv.Token, gin.H{"content": "headache"}).Code
	}()
	<-resolver.started

	rec := doJSON(r, http.MethodPost, path, conv.Token, gin.H{"content": "another headache"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(resolver.release)
	assert.Equal(t, http.StatusCreated, <-done)
}
