package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func serve(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return rec
}

func TestReadyWhenDatabaseUp(t *testing.T) {
	h, err := New("test", stubPinger{}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(t, h.Handler()).Code)
}

func TestUnavailableWhenDatabaseDown(t *testing.T) {
	h, err := New("test", stubPinger{err: errors.New("refused")}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, serve(t, h.Handler()).Code)
}

func TestMirrorFailureIsNotFatal(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectPing().SetErr(errors.New("redis down"))

	h, err := New("test", stubPinger{}, client)
	require.NoError(t, err)

	rec := serve(t, h.Handler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis-mirror")
}
