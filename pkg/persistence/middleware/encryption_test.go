package middleware_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gratitude5dee/tendril/pkg/adapters/memory"
	"github.com/gratitude5dee/tendril/pkg/persistence/middleware"
	"github.com/gratitude5dee/tendril/pkg/ports/tests"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	secureStore := mw(underlying)

	ctx := context.Background()

	// 1. Set through the middleware
	if err := secureStore.Set(ctx, "fal-key-plaintext"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// 2. Verify the underlying store only holds the sealed envelope
	stored, err := underlying.Get(ctx)
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if strings.Contains(string(stored), "fal-key-plaintext") {
		t.Fatalf("Expected credential to be sealed, found plaintext: %v", stored)
	}

	// 3. Get through the middleware decrypts
	loaded, err := secureStore.Get(ctx)
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	if loaded != "fal-key-plaintext" {
		t.Errorf("Expected 'fal-key-plaintext', got %v", loaded)
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	tests.RunCredentialStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)

	// Create middleware with OLD key to seal the initial credential
	mwOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	secureStoreOld := mwOld(underlying)

	ctx := context.Background()

	// 1. Set with OLD key
	if err := secureStoreOld.Set(ctx, "sealed-with-old-key"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// 2. Get with NEW key (Active) + OLD key (Fallback)
	mwNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	secureStoreNew := mwNew(underlying)

	loaded, err := secureStoreNew.Get(ctx)
	if err != nil {
		t.Fatalf("Get with rotated key failed: %v", err)
	}
	if loaded != "sealed-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	// 3. Set again (now sealed with NEW key)
	if err := secureStoreNew.Set(ctx, "sealed-with-new-key"); err != nil {
		t.Fatalf("Set with new key failed: %v", err)
	}

	// 4. Verify we CANNOT read with just the OLD key anymore
	if _, err := secureStoreOld.Get(ctx); err == nil {
		t.Error("Expected failure when reading new-key envelope with old-key middleware")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestAuditMiddleware_NeverLogsValue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store := middleware.Chain(memory.NewStore(), middleware.NewAuditMiddleware(logger))
	ctx := context.Background()

	if err := store.Set(ctx, "super-secret-value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := store.Get(ctx); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "super-secret-value") {
		t.Fatalf("audit log leaked the credential: %s", out)
	}
	for _, want := range []string{"credential stored", "credential read", "credential cleared"} {
		if !strings.Contains(out, want) {
			t.Errorf("audit log missing %q: %s", want, out)
		}
	}
}

func TestChainOrder(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// Audit outermost, encryption inside: the audit layer sees the operation,
	// the inner store sees only ciphertext.
	underlying := memory.NewStore()
	store := middleware.Chain(underlying,
		middleware.NewAuditMiddleware(logger),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	ctx := context.Background()
	if err := store.Set(ctx, "chained-credential"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	stored, err := underlying.Get(ctx)
	if err != nil {
		t.Fatalf("underlying Get failed: %v", err)
	}
	if strings.Contains(string(stored), "chained-credential") {
		t.Fatal("chain did not encrypt before the inner store")
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "chained-credential" {
		t.Fatalf("credential = %q", got)
	}
}
