package wrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlhimicMan/formsadvanced/generator"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetReq struct {
	Name  string                  `json:"name"`
	Lang  string                  `json:"lang" param:"lang,query"`
	Files []*multipart.FileHeader `json:"-" param:"files"`
}

type greetRes struct {
	Greeting string   `json:"greeting"`
	Files    []string `json:"files,omitempty"`
}

type itemReq struct {
	ID     string `param:"id,path"`
	Filter string `json:"filter"`
}

func greet(_ context.Context, req greetReq) (greetRes, error) {
	res := greetRes{Greeting: "hello " + req.Name + " " + req.Lang}
	for _, f := range req.Files {
		res.Files = append(res.Files, f.Filename)
	}
	return res, nil
}

func newTestRouter(t *testing.T) (*echo.Echo, *RouteWrapper) {
	t.Helper()
	e := echo.New()
	router := NewRouter(e)
	group := router.Group("/api", "Test")

	_, err := group.POST("/greet", generator.HandlerParameters{Summary: "Greet"}, greet)
	require.NoError(t, err)
	_, err = group.GET("/items/:id", generator.HandlerParameters{}, func(_ context.Context, req itemReq) (greetRes, error) {
		return greetRes{Greeting: req.ID + ":" + req.Filter}, nil
	})
	require.NoError(t, err)
	_, err = group.POST("/invalid", generator.HandlerParameters{}, func(_ context.Context, _ EmptyReq) (EmptyResp, error) {
		return EmptyResp{}, NewErrorResult(http.StatusUnprocessableEntity, map[string]string{"name": "Name is required."})
	})
	require.NoError(t, err)
	_, err = group.POST("/typed-nil", generator.HandlerParameters{}, func(_ context.Context, _ EmptyReq) (greetRes, *ErrorResult) {
		return greetRes{Greeting: "ok"}, nil
	})
	require.NoError(t, err)
	_, err = group.POST("/boom", generator.HandlerParameters{}, func(_ context.Context, _ EmptyReq) error {
		return errors.New("boom")
	})
	require.NoError(t, err)
	return e, router
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCallProcessorJSON(t *testing.T) {
	e, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/greet?lang=pt", strings.NewReader(`{"name":"ana"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res greetRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "hello ana pt", res.Greeting)
}

func TestCallProcessorEmptyBody(t *testing.T) {
	e, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/greet", nil)
	rec := serve(e, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"greeting":"hello  "`)
}

func TestCallProcessorBadJSON(t *testing.T) {
	e, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/greet", strings.NewReader(`{"name":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var res ErrorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestCallProcessorMultipart(t *testing.T) {
	e, _ := newTestRouter(t)
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("request", `{"name":"bo"}`))
	for _, name := range []string{"a.png", "b.png"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, "data")
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/greet", body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := serve(e, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res greetRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "hello bo ", res.Greeting)
	assert.Equal(t, []string{"a.png", "b.png"}, res.Files)
}

func TestCallProcessorPathAndQuery(t *testing.T) {
	e, _ := newTestRouter(t)
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/items/42?filter=new", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"greeting":"42:new"`)
}

func TestCallProcessorErrors(t *testing.T) {
	e, _ := newTestRouter(t)

	rec := serve(e, httptest.NewRequest(http.MethodPost, "/api/invalid", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"status":422,"message":{"name":"Name is required."}}`, rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodPost, "/api/typed-nil", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"greeting":"ok"`)

	rec = serve(e, httptest.NewRequest(http.MethodPost, "/api/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"status":500,"message":"boom"}`, rec.Body.String())
}

func TestRegisterRejectsBadHandlers(t *testing.T) {
	e := echo.New()
	group := NewRouter(e).Group("/api", "Test")
	cases := map[string]interface{}{
		"not a func":     "handler",
		"no context":     func(a, b greetReq) error { return nil },
		"not a struct":   func(_ context.Context, _ string) error { return nil },
		"bad third":      func(_ context.Context, _ greetReq, _ string) error { return nil },
		"bad return":     func(_ context.Context, _ greetReq) string { return "" },
		"non struct out": func(_ context.Context, _ greetReq) (string, error) { return "", nil },
	}
	for name, handler := range cases {
		_, err := group.POST("/"+strings.ReplaceAll(name, " ", "-"), generator.HandlerParameters{}, handler)
		assert.Error(t, err, name)
	}
}

func TestGenerateSwagger(t *testing.T) {
	_, router := newTestRouter(t)
	doc, err := router.GenerateSwagger(generator.DocInfo{Title: "Test API"})
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &parsed))
	paths, ok := parsed["paths"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, paths, "/api/greet")
	assert.Contains(t, paths, "/api/items/{id}")
	assert.Equal(t, string(doc), registeredDoc.ReadDoc())

	// a second document replaces the first one
	_, err = router.GenerateSwagger(generator.DocInfo{Title: "Other API"})
	require.NoError(t, err)
	assert.Contains(t, registeredDoc.ReadDoc(), "Other API")
}
