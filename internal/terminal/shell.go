package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/screens"
	"go.uber.org/zap"
)

// ErrUsage marks a malformed shell command.
var ErrUsage = errors.New("uso incorrecto")

const helpText = `Comandos:
  ir analizar|registrar|perfiles    cambiar de pantalla
  ayuda                             mostrar esta ayuda
  salir                             terminar la sesión

Analizar:   foto, analizar
Registrar:  campo <nombre|apellidos|codigo_estudiante|correo> <valor>, requisitoriado si|no, foto, enviar
Perfiles:   filtro todos|requisitoriados|no_requisitoriados, refrescar, editar <n|id>, eliminar <n|id>
Editar:     campo <nombre> <valor>, requisitoriado [si|no], guardar, cancelar`

var screenAliases = map[string]navigation.Route{
	"analizar":  navigation.Analyze{},
	"analyze":   navigation.Analyze{},
	"registrar": navigation.Register{},
	"register":  navigation.Register{},
	"perfiles":  navigation.ProfileList{},
	"profiles":  navigation.ProfileList{},
}

var filterAliases = map[string]domain.Filter{
	"todos":              domain.FilterAll,
	"all":                domain.FilterAll,
	"requisitoriados":    domain.FilterFlagged,
	"no_requisitoriados": domain.FilterUnflagged,
}

// Shell is the interactive session loop.
type Shell struct {
	session *screens.Session
	console *Console
	out     io.Writer
	logger  *zap.Logger
}

// NewShell creates a shell over session.
func NewShell(session *screens.Session, console *Console, out io.Writer, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{session: session, console: console, out: out, logger: logger}
}

// Run renders the active screen and executes commands until "salir", end of input or
// ctx is done.
func (sh *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(sh.out, "Registro Facial. Escribe \"ayuda\" para ver los comandos.")
	for {
		if err := sh.session.Activate(ctx); err != nil {
			sh.logger.Debug("Screen load failed", zap.Error(err))
		}

		fmt.Fprintln(sh.out)
		NavBar(sh.out, sh.session.Navigator().Screen())
		RenderScreen(sh.out, sh.session.Active())

		line, err := sh.console.ReadLine(ctx, "registro> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		quit, err := sh.Execute(ctx, line)
		if quit {
			return nil
		}
		if err != nil {
			sh.report(err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// report prints errors that no alert has shown yet.
func (sh *Shell) report(err error) {
	switch {
	case errors.Is(err, ErrUsage), errors.Is(err, domain.ErrNoImage),
		errors.Is(err, domain.ErrRequestInFlight), errors.Is(err, domain.ErrProfileNotFound):
		fmt.Fprintf(sh.out, "%v\n", err)
	default:
		var unknown *domain.UnknownFieldError
		if errors.As(err, &unknown) {
			fmt.Fprintf(sh.out, "%v\n", err)
			return
		}
		sh.logger.Debug("Command failed", zap.Error(err))
	}
}

// Execute runs one command line against the active screen. quit is true for "salir".
func (sh *Shell) Execute(ctx context.Context, line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "salir", "exit", "quit":
		return true, nil
	case "ayuda", "help", "?":
		fmt.Fprintln(sh.out, helpText)
		return false, nil
	case "ir", "go":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: ir analizar|registrar|perfiles", ErrUsage)
		}
		route, ok := screenAliases[strings.ToLower(args[0])]
		if !ok {
			return false, fmt.Errorf("%w: pantalla desconocida %q", ErrUsage, args[0])
		}
		sh.session.Navigator().Navigate(route)
		return false, nil
	}

	switch s := sh.session.Active().(type) {
	case *screens.AnalyzeScreen:
		return false, sh.analyze(ctx, s, cmd)
	case *screens.RegisterScreen:
		return false, sh.register(ctx, s, cmd, args)
	case *screens.ProfileListScreen:
		return false, sh.profileList(ctx, s, cmd, args)
	case *screens.EditProfileScreen:
		return false, sh.editProfile(ctx, s, cmd, args)
	}
	return false, fmt.Errorf("%w: comando desconocido %q", ErrUsage, cmd)
}

func (sh *Shell) analyze(ctx context.Context, s *screens.AnalyzeScreen, cmd string) error {
	switch cmd {
	case "foto":
		return s.PickImage(ctx)
	case "analizar":
		if s.Image() == nil {
			return fmt.Errorf("%w: primero selecciona una foto", domain.ErrNoImage)
		}
		_, err := s.Analyze(ctx)
		return err
	}
	return unknownCommand(cmd)
}

func (sh *Shell) register(ctx context.Context, s *screens.RegisterScreen, cmd string, args []string) error {
	switch cmd {
	case "campo":
		name, value, err := fieldArgs(args)
		if err != nil {
			return err
		}
		return s.SetField(name, value)
	case "requisitoriado":
		flagged, err := flagArg(args, s.Fields().Requisitoriado)
		if err != nil {
			return err
		}
		s.SetFlagged(flagged)
		return nil
	case "foto":
		return s.PickImage(ctx)
	case "enviar":
		_, err := s.Submit(ctx)
		return err
	}
	return unknownCommand(cmd)
}

func (sh *Shell) profileList(ctx context.Context, s *screens.ProfileListScreen, cmd string, args []string) error {
	switch cmd {
	case "filtro":
		if len(args) != 1 {
			return fmt.Errorf("%w: filtro todos|requisitoriados|no_requisitoriados", ErrUsage)
		}
		f, ok := filterAliases[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("%w: filtro desconocido %q", ErrUsage, args[0])
		}
		s.SetFilter(f)
		return nil
	case "refrescar":
		_, err := s.Refresh(ctx)
		return err
	case "editar":
		p, err := pickProfile(s, args)
		if err != nil {
			return err
		}
		s.Edit(p)
		return nil
	case "eliminar":
		p, err := pickProfile(s, args)
		if err != nil {
			return err
		}
		_, err = s.Delete(ctx, p)
		return err
	}
	return unknownCommand(cmd)
}

func (sh *Shell) editProfile(ctx context.Context, s *screens.EditProfileScreen, cmd string, args []string) error {
	switch cmd {
	case "campo":
		name, value, err := fieldArgs(args)
		if err != nil {
			return err
		}
		return s.SetField(name, value)
	case "requisitoriado":
		if len(args) == 0 {
			s.ToggleFlagged()
			return nil
		}
		flagged, err := flagArg(args, false)
		if err != nil {
			return err
		}
		s.SetFlagged(flagged)
		return nil
	case "guardar":
		return s.Save(ctx)
	case "cancelar":
		s.Cancel()
		return nil
	}
	return unknownCommand(cmd)
}

func unknownCommand(cmd string) error {
	return fmt.Errorf("%w: comando desconocido %q en esta pantalla", ErrUsage, cmd)
}

// fieldArgs splits "campo <name> <value...>". The value may be empty.
func fieldArgs(args []string) (string, string, error) {
	if len(args) == 0 {
		return "", "", fmt.Errorf("%w: campo <nombre> <valor>", ErrUsage)
	}
	return strings.ToLower(args[0]), strings.Join(args[1:], " "), nil
}

// flagArg parses si/no. With no argument the flag is toggled from current.
func flagArg(args []string, current bool) (bool, error) {
	if len(args) == 0 {
		return !current, nil
	}
	switch strings.ToLower(args[0]) {
	case "si", "sí", "s", "true", "1":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: requisitoriado si|no", ErrUsage)
}

// pickProfile resolves a 1-based row of the displayed list, or a profile id.
func pickProfile(s *screens.ProfileListScreen, args []string) (domain.Profile, error) {
	if len(args) != 1 {
		return domain.Profile{}, fmt.Errorf("%w: indica el número o el id del perfil", ErrUsage)
	}
	displayed := s.Displayed()
	if n, err := strconv.Atoi(args[0]); err == nil && n >= 1 && n <= len(displayed) {
		return displayed[n-1], nil
	}
	return s.Find(args[0])
}
