package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"session-hub/internal/domain"
	"session-hub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	copyErr   error
	copied    [][2]string
	urlPrefix string
}

func (s *fakeStorage) CreateUploadURL(_ context.Context, key string) (string, error) {
	return s.urlPrefix + "/upload/" + key, nil
}

func (s *fakeStorage) Copy(_ context.Context, srcKey, dstKey string) (string, error) {
	if s.copyErr != nil {
		return "", s.copyErr
	}
	s.copied = append(s.copied, [2]string{srcKey, dstKey})
	return s.urlPrefix + "/" + dstKey, nil
}

func (s *fakeStorage) Delete(context.Context, string) error { return nil }

type uploadEnv struct {
	*authEnv
	handler *UploadHandler
	storage *fakeStorage
}

func newUploadEnv(t *testing.T) *uploadEnv {
	t.Helper()

	auth := newAuthEnv(t)
	storage := &fakeStorage{urlPrefix: "https://storage.example.com"}
	broker := usecase.NewUploadBroker(storage, slog.Default())

	return &uploadEnv{
		authEnv: auth,
		handler: NewUploadHandler(broker, auth.authorize, auth.handler),
		storage: storage,
	}
}

func (env *uploadEnv) authedRequest(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	cookie := env.login(t, domain.ExternalProfile{
		Provider: "google", SubjectID: "uploader", Email: "up@example.com", DisplayName: "Uploader",
	})

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookie.Value})
	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}

func TestHandleBegin(t *testing.T) {
	env := newUploadEnv(t)

	c, rec := env.authedRequest(t, http.MethodPost, "/uploads",
		`{"filename":"avatar.png","size":1024,"contentType":"image/png"}`)

	require.NoError(t, env.handler.HandleBegin(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tmpKey":"service/.tmp/`)
	assert.Contains(t, rec.Body.String(), "-avatar.png")
	assert.Contains(t, rec.Body.String(), `"uploadUrl":"https://storage.example.com/upload/service/.tmp/`)
}

func TestHandleBegin_Unauthenticated(t *testing.T) {
	env := newUploadEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/uploads",
		strings.NewReader(`{"filename":"avatar.png","size":1024}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := env.handler.HandleBegin(env.echo.NewContext(req, rec))
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestHandleBegin_TooLarge(t *testing.T) {
	env := newUploadEnv(t)

	body := fmt.Sprintf(`{"filename":"big.bin","size":%d}`, domain.MaxUploadBytes+1)
	c, _ := env.authedRequest(t, http.MethodPost, "/uploads", body)

	err := env.handler.HandleBegin(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, httpErr.Code)
}

func TestHandleBegin_MissingFilename(t *testing.T) {
	env := newUploadEnv(t)

	c, _ := env.authedRequest(t, http.MethodPost, "/uploads", `{"size":10}`)

	err := env.handler.HandleBegin(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestHandlePromote(t *testing.T) {
	env := newUploadEnv(t)

	c, rec := env.authedRequest(t, http.MethodPost, "/uploads/promote",
		`{"tmpKey":"service/.tmp/1700000000000-avatar.png","entityName":"user","fieldName":"avatar","entityId":"user-uploader"}`)

	require.NoError(t, env.handler.HandlePromote(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"key":"user/avatar/user-uploader","url":"https://storage.example.com/user/avatar/user-uploader"}`,
		rec.Body.String())
	require.Len(t, env.storage.copied, 1)
	assert.Equal(t, "service/.tmp/1700000000000-avatar.png", env.storage.copied[0][0])
}

func TestHandlePromote_StagedObjectMissing(t *testing.T) {
	env := newUploadEnv(t)
	env.storage.copyErr = domain.ErrObjectNotFound

	c, _ := env.authedRequest(t, http.MethodPost, "/uploads/promote",
		`{"tmpKey":"service/.tmp/1-gone.png","entityName":"user","fieldName":"avatar","entityId":"u1"}`)

	err := env.handler.HandlePromote(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
