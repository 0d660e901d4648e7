package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/screens"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatTable, FormatJSON, FormatYAML}

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// navLabels are the tab labels of the navigation bar.
var navLabels = []struct {
	screen navigation.Screen
	label  string
}{
	{navigation.ScreenAnalyze, "Analizar"},
	{navigation.ScreenRegister, "Registrar"},
	{navigation.ScreenProfileList, "Perfiles"},
}

var filterLabels = map[domain.Filter]string{
	domain.FilterAll:       "Todos",
	domain.FilterFlagged:   "Requisitoriados",
	domain.FilterUnflagged: "No Requisitoriados",
}

// Printer renders data in one output format.
type Printer struct {
	Out    io.Writer
	Format string
}

// NewPrinter creates a printer; unknown formats render as tables.
func NewPrinter(out io.Writer, format string) *Printer {
	if !ValidFormat(format) {
		format = FormatTable
	}
	return &Printer{Out: out, Format: format}
}

func (p *Printer) structured(v any) (bool, error) {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// Profiles prints a profile list.
func (p *Printer) Profiles(profiles []domain.Profile) error {
	if profiles == nil {
		profiles = []domain.Profile{}
	}
	if done, err := p.structured(profiles); done {
		return err
	}

	if len(profiles) == 0 {
		_, err := fmt.Fprintln(p.Out, "No hay perfiles para mostrar.")
		return err
	}

	tw := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNOMBRE\tCÓDIGO\tCORREO\tREQUISITORIADO")
	for i, pr := range profiles {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", i+1, pr.ID, pr.FullName(), pr.CodigoEstudiante, pr.Correo, yesNo(pr.Requisitoriado))
	}
	return tw.Flush()
}

// Profile prints one profile.
func (p *Printer) Profile(profile domain.Profile) error {
	if done, err := p.structured(profile); done {
		return err
	}

	tw := tabwriter.NewWriter(p.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", profile.ID)
	fmt.Fprintf(tw, "Nombre:\t%s\n", profile.Nombre)
	fmt.Fprintf(tw, "Apellidos:\t%s\n", profile.Apellidos)
	fmt.Fprintf(tw, "Código:\t%s\n", profile.CodigoEstudiante)
	fmt.Fprintf(tw, "Correo:\t%s\n", profile.Correo)
	fmt.Fprintf(tw, "Requisitoriado:\t%s\n", yesNo(profile.Requisitoriado))
	if profile.PhotoURL != "" {
		fmt.Fprintf(tw, "Foto:\t%s\n", profile.PhotoURL)
	}
	return tw.Flush()
}

// Analysis prints a recognition result.
func (p *Printer) Analysis(result domain.AnalysisResult) error {
	if done, err := p.structured(result); done {
		return err
	}

	if !result.Match || result.Profile == nil {
		reason := result.Reason
		if reason == "" {
			reason = screens.MsgNoMatch
		}
		_, err := fmt.Fprintf(p.Out, "Sin coincidencia: %s\n", reason)
		return err
	}

	if result.Profile.Requisitoriado {
		fmt.Fprintln(p.Out, "¡ALERTA! Persona requisitoriada")
	} else {
		fmt.Fprintln(p.Out, "Coincidencia encontrada")
	}
	return p.Profile(*result.Profile)
}

// NavBar prints the navigation bar with the active tab in brackets. EditProfile
// belongs to the Perfiles tab.
func NavBar(w io.Writer, current navigation.Screen) {
	if current == navigation.ScreenEditProfile {
		current = navigation.ScreenProfileList
	}
	parts := make([]string, 0, len(navLabels))
	for _, n := range navLabels {
		if n.screen == current {
			parts = append(parts, "["+n.label+"]")
		} else {
			parts = append(parts, " "+n.label+" ")
		}
	}
	fmt.Fprintln(w, strings.Join(parts, " | "))
}

// RenderScreen prints the active screen of a session.
func RenderScreen(w io.Writer, screen screens.Screen) {
	p := NewPrinter(w, FormatTable)
	switch s := screen.(type) {
	case *screens.AnalyzeScreen:
		fmt.Fprintln(w, "Analizar Rostro")
		if img := s.Image(); img != nil {
			fmt.Fprintf(w, "Foto: %s\n", img.URI)
		} else {
			fmt.Fprintln(w, "Foto: (ninguna)")
		}
		if s.Loading() {
			fmt.Fprintln(w, "Analizando...")
		}
		if r := s.Result(); r != nil {
			_ = p.Analysis(*r)
		}
	case *screens.RegisterScreen:
		fmt.Fprintln(w, "Registrar Nuevo Perfil")
		renderForm(w, s.Fields())
		if img := s.Image(); img != nil {
			fmt.Fprintf(w, "  foto:              %s\n", img.URI)
		} else {
			fmt.Fprintln(w, "  foto:              (ninguna)")
		}
	case *screens.ProfileListScreen:
		fmt.Fprintf(w, "Perfiles Registrados (filtro: %s)\n", filterLabels[s.Filter()])
		_ = p.Profiles(s.Displayed())
	case *screens.EditProfileScreen:
		fmt.Fprintf(w, "Editar Perfil %s\n", s.Profile().ID)
		renderForm(w, s.Fields())
	}
}

func renderForm(w io.Writer, f domain.ProfileFields) {
	for _, name := range domain.TextFieldNames {
		v, _ := f.Get(name)
		fmt.Fprintf(w, "  %-18s %s\n", name+":", v)
	}
	fmt.Fprintf(w, "  %-18s %s\n", "requisitoriado:", yesNo(f.Requisitoriado))
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}
