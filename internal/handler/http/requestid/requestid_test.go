package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(header string) (ctxID string, rr *httptest.ResponseRecorder) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/news/search?q=dolar", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return ctxID, rr
}

func TestMiddleware_GeneratesID(t *testing.T) {
	id, rr := serve("")
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, rr.Header().Get(RequestIDHeader))
}

func TestMiddleware_KeepsClientID(t *testing.T) {
	id, rr := serve("edge-7f3a91")
	assert.Equal(t, "edge-7f3a91", id)
	assert.Equal(t, "edge-7f3a91", rr.Header().Get(RequestIDHeader))
}

func TestMiddleware_ReplacesMalformedID(t *testing.T) {
	for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("x", 129), "çok"} {
		id, _ := serve(bad)
		assert.NotEqual(t, bad, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err, bad)
	}
}

func TestFromContext_Empty(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	assert.Equal(t, "abc", FromContext(WithRequestID(context.Background(), "abc")))
}
