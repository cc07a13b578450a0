package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopnotify_backend/internal/stores"
	"shopnotify_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

type fakeResolver struct {
	store stores.Store
	err   error
}

func (f *fakeResolver) GetByShopDomain(context.Context, string) (stores.Store, error) {
	return f.store, f.err
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidSignature(t *testing.T) {
	body := []byte(`{"id":1}`)
	secret := "shpss_secret"

	if !ValidSignature(body, sign(body, secret), secret) {
		t.Fatal("valid signature rejected")
	}
	if ValidSignature(body, sign(body, "other"), secret) {
		t.Fatal("signature under wrong secret accepted")
	}
	if ValidSignature([]byte("tampered"), sign(body, secret), secret) {
		t.Fatal("signature over different body accepted")
	}
	if ValidSignature(body, "", secret) {
		t.Fatal("empty signature accepted")
	}
	if ValidSignature(body, sign(body, ""), "") {
		t.Fatal("empty secret accepted")
	}
}

func newVerifyRouter(resolver StoreResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/hook", VerifyMiddleware(resolver), func(c *gin.Context) {
		store, ok := storeFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no store"})
			return
		}
		body, _ := bodyFromContext(c)
		c.JSON(http.StatusOK, gin.H{"shop": store.ShopDomain, "bytes": len(body)})
	})
	return engine
}

func TestVerifyMiddlewareAcceptsSignedRequest(t *testing.T) {
	secret := "whsec"
	resolver := &fakeResolver{store: stores.Store{ShopDomain: "acme.myshopify.com", WebhookSecret: secret}}
	engine := newVerifyRouter(resolver)

	body := []byte(`{"id":42}`)
	req := httptest.NewRequest(http.MethodPost, "/hook", bytes.NewReader(body))
	req.Header.Set(headerShopDomain, "acme.myshopify.com")
	req.Header.Set(headerHmac, sign(body, secret))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestVerifyMiddlewareRejectsBadSignature(t *testing.T) {
	resolver := &fakeResolver{store: stores.Store{ShopDomain: "acme.myshopify.com", WebhookSecret: "whsec"}}
	engine := newVerifyRouter(resolver)

	body := []byte(`{"id":42}`)
	req := httptest.NewRequest(http.MethodPost, "/hook", bytes.NewReader(body))
	req.Header.Set(headerShopDomain, "acme.myshopify.com")
	req.Header.Set(headerHmac, sign(body, "wrong-secret"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestVerifyMiddlewareRejectsUnknownShop(t *testing.T) {
	resolver := &fakeResolver{err: apperr.NotFound("store not found")}
	engine := newVerifyRouter(resolver)

	req := httptest.NewRequest(http.MethodPost, "/hook", bytes.NewReader([]byte("{}")))
	req.Header.Set(headerShopDomain, "ghost.myshopify.com")
	req.Header.Set(headerHmac, "sig")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestVerifyMiddlewareRequiresShopDomain(t *testing.T) {
	engine := newVerifyRouter(&fakeResolver{})

	req := httptest.NewRequest(http.MethodPost, "/hook", bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
