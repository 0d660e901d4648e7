package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/core/repository/memory"
	logicv1 "github.com/duynhne/registro-facial/internal/logic/v1"
	"github.com/duynhne/registro-facial/internal/remote"
	v1 "github.com/duynhne/registro-facial/internal/web/v1"
)

func stubBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := logicv1.NewRegistryService(memory.NewProfileRepository(), memory.NewPhotoStore(), "http://stub")
	v1.NewRegistryHandler(svc, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type result struct {
	stdout, stderr string
	err            error
}

func run(t *testing.T, server, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--server", server}, args...))
	err := cmd.Execute()
	return result{out.String(), errOut.String(), err}
}

func writePhoto(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ana.jpg")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func listJSON(t *testing.T, server string, extra ...string) []domain.Profile {
	t.Helper()
	res := run(t, server, "", append([]string{"list", "-o", "json"}, extra...)...)
	require.NoError(t, res.err, res.stderr)
	var profiles []domain.Profile
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &profiles))
	return profiles
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &out, &out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "registro version "+Version)
}

func TestEndToEnd(t *testing.T) {
	srv := stubBackend(t)
	photo := writePhoto(t, "cara-de-ana")

	res := run(t, srv.URL, "", "register", photo, "--nombre", "Ana", "--apellidos", "Pérez", "--codigo", "S123", "--correo", "ana@uni.edu", "-o", "json")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "Perfil para Ana registrado.")
	var created domain.Profile
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &created))
	require.NotEmpty(t, created.ID)

	profiles := listJSON(t, srv.URL)
	require.Len(t, profiles, 1)
	assert.Equal(t, "S123", profiles[0].CodigoEstudiante)
	assert.Empty(t, listJSON(t, srv.URL, "--filter", "requisitoriados"))

	res = run(t, srv.URL, "", "analyze", photo, "-o", "json")
	require.NoError(t, res.err, res.stderr)
	var analysis domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &analysis))
	assert.True(t, analysis.Match)
	assert.Equal(t, created.ID, analysis.Profile.ID)

	res = run(t, srv.URL, "", "update", created.ID, "--requisitoriado")
	require.NoError(t, res.err, res.stderr)
	profiles = listJSON(t, srv.URL, "--filter", "requisitoriados")
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ana", profiles[0].Nombre)
	assert.Equal(t, "ana@uni.edu", profiles[0].Correo, "fields not passed keep their values")

	res = run(t, srv.URL, "1\n", "delete", created.ID)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Cancelado.")
	assert.Contains(t, res.stderr, "¿Estás seguro de que quieres eliminar a Ana Pérez?")
	assert.Len(t, listJSON(t, srv.URL), 1)

	res = run(t, srv.URL, "", "delete", created.ID, "--yes")
	require.NoError(t, res.err, res.stderr)
	assert.Empty(t, listJSON(t, srv.URL))
}

func TestRegister_ValidationSendsNothing(t *testing.T) {
	srv := stubBackend(t)
	photo := writePhoto(t, "x")

	res := run(t, srv.URL, "", "register", photo, "--codigo", "S123")
	var verr *domain.ValidationError
	require.ErrorAs(t, res.err, &verr)
	assert.Contains(t, res.stderr, "Campos incompletos")
	assert.Empty(t, listJSON(t, srv.URL))
}

func TestUpdate_RequiresAFlag(t *testing.T) {
	srv := stubBackend(t)
	res := run(t, srv.URL, "", "update", "7")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "nothing to update")
}

func TestUpdate_UnknownProfile(t *testing.T) {
	srv := stubBackend(t)
	res := run(t, srv.URL, "", "update", "7", "--nombre", "x")
	assert.ErrorIs(t, res.err, domain.ErrProfileNotFound)
}

func TestList_BackendDown(t *testing.T) {
	srv := stubBackend(t)
	url := srv.URL
	srv.Close()

	res := run(t, url, "", "list")
	require.Error(t, res.err)
	assert.True(t, remote.IsTransport(res.err))
	assert.Contains(t, res.stderr, "No se pudo conectar")
}

func TestInvalidOutputFormat(t *testing.T) {
	srv := stubBackend(t)
	res := run(t, srv.URL, "", "list", "-o", "xml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "OUTPUT_FORMAT")
}

func TestSession_Scripted(t *testing.T) {
	srv := stubBackend(t)
	photo := writePhoto(t, "cara-de-luis")
	res := run(t, srv.URL, "", "register", photo, "--nombre", "Luis", "--codigo", "S9")
	require.NoError(t, res.err, res.stderr)

	res = run(t, srv.URL, "ir perfiles\nfiltro no_requisitoriados\nsalir\n", "session")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "[Perfiles]")
	assert.Contains(t, res.stdout, "Luis")
	assert.Contains(t, res.stdout, "filtro: No Requisitoriados")
}
