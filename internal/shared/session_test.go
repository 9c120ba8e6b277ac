package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	_ "github.com/lodestar-crm/lodestar-crm/testing"
)

func newManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func TestLoadWithoutCookieCreatesFreshSession(t *testing.T) {
	sm, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Empty(t, sess.User())
}

func TestCommitThenLoadRoundTrip(t *testing.T) {
	sm, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")
	sess.Set("theme", "dark")

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, req, sess))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	restored, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	require.Equal(t, "42", restored.User())
	require.Equal(t, "dark", restored.Get("theme"))
}

func TestExpiredRedisKeyYieldsAnonymousSession(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, req, sess))
	cookie := rr.Result().Cookies()[0]

	mr.FastForward(2 * time.Hour)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	restored, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	require.Empty(t, restored.User())
}

func TestDestroyDeletesStateAndClearsCookie(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, req, sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	rr2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr2, req, sess))
	require.False(t, mr.Exists("session:"+sess.ID))

	cleared := rr2.Result().Cookies()[0]
	require.Empty(t, cleared.Value)
	require.Negative(t, cleared.MaxAge)
}

func TestRotateChangesIDAndDropsOldKey(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, req, sess))
	oldID := sess.ID
	require.True(t, mr.Exists("session:"+oldID))

	require.NoError(t, sm.Rotate(ctx, sess))
	require.NotEqual(t, oldID, sess.ID)
	require.False(t, mr.Exists("session:"+oldID))
}
