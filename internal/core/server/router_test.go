package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestCORSConfig(t *testing.T) {
	if cfg := CORSConfig(nil); !cfg.AllowAllOrigins {
		t.Fatalf("empty origins should allow all")
	}
	if cfg := CORSConfig([]string{"https://a.example", "*"}); !cfg.AllowAllOrigins {
		t.Fatalf("wildcard should allow all")
	}
	cfg := CORSConfig([]string{"https://a.example"})
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 1 || !cfg.AllowCredentials {
		t.Fatalf("got %+v", cfg)
	}
}

func TestNewRouterRecovers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(zap.NewNop(), Options{Recovery: func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "recovered"})
	}})
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError || w.Body.String() != `{"msg":"recovered"}` {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestAddr(t *testing.T) {
	if got := Addr("0.0.0.0", 8080); got != "0.0.0.0:8080" {
		t.Fatalf("got %q", got)
	}
}
