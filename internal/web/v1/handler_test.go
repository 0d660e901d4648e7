package v1

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/core/repository/memory"
	logicv1 "github.com/duynhne/registro-facial/internal/logic/v1"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := logicv1.NewRegistryService(memory.NewProfileRepository(), memory.NewPhotoStore(), "http://stub")
	r := gin.New()
	NewRegistryHandler(svc, nil).RegisterRoutes(r)
	return r
}

func multipartBody(t *testing.T, filename string, photo []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if photo != nil {
		part, err := w.CreateFormFile("photo", filename)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(r http.Handler, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerProfile(t *testing.T, r http.Handler, nombre, photo, flag string) string {
	t.Helper()
	body, ct := multipartBody(t, "1700000000000-"+nombre+".jpg", []byte(photo), map[string]string{
		"nombre":            nombre,
		"apellidos":         "Pérez",
		"codigo_estudiante": "S-" + nombre,
		"correo":            strings.ToLower(nombre) + "@uni.edu",
		"requisitoriado":    flag,
	})
	w := do(r, http.MethodPost, "/register", body, ct)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool           `json:"success"`
		ID      string         `json:"id"`
		Data    domain.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, resp.ID, resp.Data.ID)
	assert.Equal(t, nombre, resp.Data.Nombre)
	return resp.ID
}

func listProfiles(t *testing.T, r http.Handler) []domain.Profile {
	t.Helper()
	w := do(r, http.MethodGet, "/profiles", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var profiles []domain.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profiles))
	return profiles
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestIndex(t *testing.T) {
	w := do(newRouter(), http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_ParsesFlagAndLists(t *testing.T) {
	r := newRouter()
	registerProfile(t, r, "Ana", "photo-ana", "true")
	registerProfile(t, r, "Luis", "photo-luis", "False")
	registerProfile(t, r, "Marta", "photo-marta", "T")

	profiles := listProfiles(t, r)
	require.Len(t, profiles, 3)
	assert.Equal(t, []bool{true, false, true}, []bool{profiles[0].Requisitoriado, profiles[1].Requisitoriado, profiles[2].Requisitoriado})
	assert.Equal(t, "S-Luis", profiles[1].CodigoEstudiante)
	assert.True(t, strings.HasPrefix(profiles[0].PhotoURL, "http://stub/photos/"))
}

func TestRegister_MissingPhoto(t *testing.T) {
	body, ct := multipartBody(t, "", nil, map[string]string{"nombre": "Ana"})
	w := do(newRouter(), http.MethodPost, "/register", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgNoPhoto, errorOf(t, w))
}

func TestPhotoServed(t *testing.T) {
	r := newRouter()
	registerProfile(t, r, "Ana", "photo-ana", "0")
	url := listProfiles(t, r)[0].PhotoURL

	w := do(r, http.MethodGet, strings.TrimPrefix(url, "http://stub"), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "photo-ana", w.Body.String())
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	w = do(r, http.MethodGet, "/photos/none.jpg", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyze(t *testing.T) {
	r := newRouter()

	body, ct := multipartBody(t, "x.jpg", []byte("photo-ana"), nil)
	w := do(r, http.MethodPost, "/analyze", body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"match":false,"reason":"No hay perfiles registrados en la base de datos."}`, w.Body.String())

	id := registerProfile(t, r, "Ana", "photo-ana", "1")

	body, ct = multipartBody(t, "x.jpg", []byte("photo-ana"), nil)
	w = do(r, http.MethodPost, "/analyze", body, ct)
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Match)
	require.NotNil(t, result.Profile)
	assert.Equal(t, id, result.Profile.ID)

	body, ct = multipartBody(t, "x.jpg", []byte("someone-else"), nil)
	w = do(r, http.MethodPost, "/analyze", body, ct)
	assert.JSONEq(t, `{"match":false,"reason":"No se encontró ninguna coincidencia."}`, w.Body.String())

	body, ct = multipartBody(t, "", nil, nil)
	w = do(r, http.MethodPost, "/analyze", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgNoPhotoAnalyze, errorOf(t, w))
}

func TestUpdateProfile(t *testing.T) {
	r := newRouter()
	id := registerProfile(t, r, "Ana", "photo-ana", "false")

	w := do(r, http.MethodPut, "/profiles/"+id, bytes.NewBufferString(`{"requisitoriado":true,"correo":"nuevo@uni.edu"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	p := listProfiles(t, r)[0]
	assert.True(t, p.Requisitoriado)
	assert.Equal(t, "nuevo@uni.edu", p.Correo)
	assert.Equal(t, "Ana", p.Nombre)
}

func TestUpdateProfile_Errors(t *testing.T) {
	r := newRouter()
	id := registerProfile(t, r, "Ana", "photo-ana", "false")

	w := do(r, http.MethodPut, "/profiles/"+id, bytes.NewBufferString(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgNoChanges, errorOf(t, w))

	w = do(r, http.MethodPut, "/profiles/"+id, bytes.NewBufferString(`not json`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/profiles/"+id, bytes.NewBufferString(`{"nombre":7}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "Valor inválido")

	w = do(r, http.MethodPut, "/profiles/missing", bytes.NewBufferString(`{"nombre":"x"}`), "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgNotFound, errorOf(t, w))
}

func TestDeleteProfile_Idempotent(t *testing.T) {
	r := newRouter()
	id := registerProfile(t, r, "Ana", "photo-ana", "false")

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodDelete, "/profiles/"+id, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Empty(t, listProfiles(t, r))
}

func TestSanitizeValidationError(t *testing.T) {
	assert.Equal(t, "", sanitizeValidationError(nil))
	assert.Equal(t, "Solicitud inválida.", sanitizeValidationError(assert.AnError))
}
