package middleware_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/loom/pkg/adapters/memory"
	"github.com/aretw0/loom/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw, err := middleware.NewPIIMiddleware([]string{"password", "ssn"})
	if err != nil {
		t.Fatalf("NewPIIMiddleware failed: %v", err)
	}
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	key := "pii-session"
	snapshot := []byte(`{
		"username": "jdoe",
		"user_password": "secret123",
		"details": {"address": "123 St", "ssn_number": "999-99-9999"},
		"history": [{"password": "old"}]
	}`)

	if err := secureStore.Save(ctx, key, snapshot); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	stored, err := underlyingStore.Load(ctx, key)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(stored, &doc); err != nil {
		t.Fatalf("stored snapshot is not JSON: %v", err)
	}

	if doc["username"] != "jdoe" {
		t.Error("Username shouldn't be masked")
	}
	if doc["user_password"] != middleware.Mask {
		t.Errorf("Password should be masked, got: %v", doc["user_password"])
	}
	details := doc["details"].(map[string]any)
	if details["ssn_number"] != middleware.Mask {
		t.Errorf("Nested SSN should be masked, got: %v", details["ssn_number"])
	}
	history := doc["history"].([]any)
	if history[0].(map[string]any)["password"] != middleware.Mask {
		t.Errorf("Array entries should be masked, got: %v", history[0])
	}
}

func TestPIIMiddleware_NonObjectPassesThrough(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw, _ := middleware.NewPIIMiddleware([]string{"password"})
	store := middleware.Chain(underlyingStore, mw)
	ctx := context.Background()

	if err := store.Save(ctx, "n", []byte(`42`)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, _ := underlyingStore.Load(ctx, "n")
	if string(got) != "42" {
		t.Errorf("expected untouched snapshot, got %s", got)
	}

	if _, err := middleware.NewPIIMiddleware([]string{"("}); err == nil {
		t.Error("expected invalid pattern error")
	}
}
