package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mouaaaaadddd/quizmaster/internal/config"
)

func TestUpdateConfigRebuildsClient(t *testing.T) {
	ai := NewAIService(config.AIConfig{BaseURL: "http://old", Model: "old-model"})
	if ai.client.Timeout != 5*time.Minute {
		t.Fatalf("default timeout: %v", ai.client.Timeout)
	}

	ai.UpdateConfig(config.AIConfig{
		BaseURL: "http://new",
		Model:   "new-model",
		Timeout: 10 * time.Second,
	})
	if ai.client.Timeout != 10*time.Second {
		t.Errorf("reloaded timeout not applied to client: %v", ai.client.Timeout)
	}
	if ai.config.BaseURL != "http://new" || ai.config.Model != "new-model" {
		t.Errorf("config not replaced: %+v", ai.config)
	}
}

func TestChatUsesReloadedEndpoint(t *testing.T) {
	oldHits, newHits := 0, 0

	oldServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oldHits++
		writeChatReply(w, "old")
	}))
	t.Cleanup(oldServer.Close)
	newServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		newHits++
		if got := r.Header.Get("Authorization"); got != "Bearer new-key" {
			t.Errorf("auth header after reload: %q", got)
		}
		writeChatReply(w, "new")
	}))
	t.Cleanup(newServer.Close)

	ai := NewAIService(config.AIConfig{BaseURL: oldServer.URL, APIKey: "old-key", Model: "m", Timeout: 5 * time.Second})

	reply, err := ai.Chat(context.Background(), "", "hi")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "old" {
		t.Errorf("reply before reload: %q", reply)
	}

	ai.UpdateConfig(config.AIConfig{BaseURL: newServer.URL, APIKey: "new-key", Model: "m", Timeout: 5 * time.Second})

	reply, err = ai.Chat(context.Background(), "", "hi")
	if err != nil {
		t.Fatalf("chat after reload: %v", err)
	}
	if reply != "new" {
		t.Errorf("reply after reload: %q", reply)
	}
	if oldHits != 1 || newHits != 1 {
		t.Errorf("endpoint routing after reload: old=%d new=%d", oldHits, newHits)
	}
}
