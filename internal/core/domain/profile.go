package domain

import (
	"errors"
	"net/url"
	"path/filepath"
	"strings"
)

// Profile is a registered student. ID and PhotoURL are assigned by the backend.
type Profile struct {
	ID               string `json:"id" yaml:"id"`
	Nombre           string `json:"nombre" yaml:"nombre"`
	Apellidos        string `json:"apellidos" yaml:"apellidos"`
	CodigoEstudiante string `json:"codigo_estudiante" yaml:"codigo_estudiante"`
	Correo           string `json:"correo" yaml:"correo"`
	Requisitoriado   bool   `json:"requisitoriado" yaml:"requisitoriado"`
	PhotoURL         string `json:"photo_url,omitempty" yaml:"photo_url,omitempty"`
}

// FullName joins nombre and apellidos.
func (p Profile) FullName() string {
	return strings.TrimSpace(p.Nombre + " " + p.Apellidos)
}

// Fields returns the editable part of the profile as a form draft.
func (p Profile) Fields() ProfileFields {
	return ProfileFields{
		Nombre:           p.Nombre,
		Apellidos:        p.Apellidos,
		CodigoEstudiante: p.CodigoEstudiante,
		Correo:           p.Correo,
		Requisitoriado:   p.Requisitoriado,
	}
}

// ProfileFields is the editable subset of a Profile, used as the form draft on the
// register and edit screens and as the PUT body.
type ProfileFields struct {
	Nombre           string `json:"nombre"`
	Apellidos        string `json:"apellidos"`
	CodigoEstudiante string `json:"codigo_estudiante"`
	Correo           string `json:"correo"`
	Requisitoriado   bool   `json:"requisitoriado"`
}

// Field names accepted by ProfileFields.Set.
const (
	FieldNombre           = "nombre"
	FieldApellidos        = "apellidos"
	FieldCodigoEstudiante = "codigo_estudiante"
	FieldCorreo           = "correo"
)

// TextFieldNames lists the text fields in form order.
var TextFieldNames = []string{FieldNombre, FieldApellidos, FieldCodigoEstudiante, FieldCorreo}

// Set assigns a text field by its wire name.
func (f *ProfileFields) Set(name, value string) error {
	switch name {
	case FieldNombre:
		f.Nombre = value
	case FieldApellidos:
		f.Apellidos = value
	case FieldCodigoEstudiante:
		f.CodigoEstudiante = value
	case FieldCorreo:
		f.Correo = value
	default:
		return &UnknownFieldError{Name: name}
	}
	return nil
}

// Get reads a text field by its wire name.
func (f ProfileFields) Get(name string) (string, error) {
	switch name {
	case FieldNombre:
		return f.Nombre, nil
	case FieldApellidos:
		return f.Apellidos, nil
	case FieldCodigoEstudiante:
		return f.CodigoEstudiante, nil
	case FieldCorreo:
		return f.Correo, nil
	}
	return "", &UnknownFieldError{Name: name}
}

// AnalysisResult is the /analyze response.
type AnalysisResult struct {
	Match   bool     `json:"match" yaml:"match"`
	Profile *Profile `json:"profile,omitempty" yaml:"profile,omitempty"`
	Reason  string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Image is a local image handle produced by the media adapter. URI is a file:// URI
// or a plain local path.
type Image struct {
	URI      string
	MimeType string
	Width    int
	Height   int
}

// FileURI returns the file:// URI of a local path, escaping characters such as
// '#', '?' and '%'.
func FileURI(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// LocalPath resolves uri to a local file path. Anything without the file scheme is
// taken as a path already.
func LocalPath(uri string) (string, error) {
	if !strings.HasPrefix(uri, "file:") {
		if uri == "" {
			return "", errors.New("empty image uri")
		}
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Path == "" {
		return "", errors.New("empty image uri")
	}
	return filepath.FromSlash(u.Path), nil
}
