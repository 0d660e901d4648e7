package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/duynhne/registro-facial/internal/core/domain"
	"github.com/duynhne/registro-facial/internal/media"
	"github.com/duynhne/registro-facial/internal/navigation"
	"github.com/duynhne/registro-facial/internal/screens"
	"github.com/duynhne/registro-facial/internal/terminal"
)

// oneShotDeps wires screens for a single command: dialogs go to stderr so stdout
// only carries the result.
func (a *app) oneShotDeps(confirm screens.Confirmer) screens.Deps {
	console := terminal.NewConsole(a.stdin, a.stderr)
	if confirm == nil {
		confirm = console
	}
	return screens.Deps{
		Service: a.client,
		Alerts:  console,
		Confirm: confirm,
		Nav:     navigation.NewController(a.logger),
		Logger:  a.logger.Named("screens"),
	}
}

// localImage turns a path into an image handle, optionally cropped and re-encoded.
func (a *app) localImage(path string, process bool) (*domain.Image, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve photo path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("photo: %w", err)
	}
	if process {
		return media.Process(abs, a.cfg.Media.WorkDir, media.DefaultOptions(a.cfg.Media.Quality))
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(abs)))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return &domain.Image{URI: abs, MimeType: mimeType}, nil
}

func sessionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Open the interactive session (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSession(cmd.Context())
		},
	}
}

func (a *app) runSession(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := a.cfg.Metrics.Addr; addr != "" && a.cfg.Metrics.Enabled {
		srv := a.startMetricsServer(addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GetShutdownTimeoutDuration())
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	console := terminal.NewConsole(a.stdin, a.stdout)
	selector := media.NewSelector(
		console,
		media.NewHostPermissions(a.cfg.Media.GalleryDir, a.cfg.Media.CameraCommand),
		media.NewLocalPicker(console, a.cfg.Media.GalleryDir, a.cfg.Media.CameraCommand, a.cfg.Media.WorkDir, a.logger.Named("media")),
		media.DefaultOptions(a.cfg.Media.Quality),
		a.logger.Named("media"),
	)

	nav := navigation.NewController(a.logger.Named("navigation"))
	session := screens.NewSession(nav, screens.Deps{
		Service: a.client,
		Images:  selector,
		Alerts:  console,
		Confirm: console,
		Logger:  a.logger.Named("screens"),
	})

	a.logger.Info("Session started", zap.String("server", a.client.BaseURL()))
	err := terminal.NewShell(session, console, a.stdout, a.logger).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startMetricsServer exposes the client metrics while a session runs.
func (a *app) startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("Metrics listener failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.logger.Info("Metrics listener started", zap.String("addr", addr), zap.String("path", a.cfg.Metrics.Path))
	return srv
}

func listCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := domain.ParseFilter(filter)
			if err != nil {
				return err
			}
			list := screens.NewProfileListScreen(a.oneShotDeps(nil))
			if err := list.Mount(cmd.Context()); err != nil {
				return err
			}
			list.SetFilter(f)
			return a.printer.Profiles(list.Displayed())
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(domain.FilterAll), "Filter: all, requisitoriados, no_requisitoriados")
	return cmd
}

func analyzeCmd(a *app) *cobra.Command {
	var process bool
	cmd := &cobra.Command{
		Use:   "analyze <photo>",
		Short: "Look up the person in a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.localImage(args[0], process)
			if err != nil {
				return err
			}
			screen := screens.NewAnalyzeScreen(a.oneShotDeps(nil))
			screen.SetImage(img)
			result, err := screen.Analyze(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Analysis(*result)
		},
	}
	cmd.Flags().BoolVar(&process, "process", false, "Crop square and re-encode before upload")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var (
		fields  domain.ProfileFields
		process bool
	)
	cmd := &cobra.Command{
		Use:   "register <photo>",
		Short: "Register a new profile with a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := a.localImage(args[0], process)
			if err != nil {
				return err
			}
			screen := screens.NewRegisterScreen(a.oneShotDeps(nil))
			for _, name := range domain.TextFieldNames {
				v, _ := fields.Get(name)
				if err := screen.SetField(name, v); err != nil {
					return err
				}
			}
			screen.SetFlagged(fields.Requisitoriado)
			screen.SetImage(img)

			profile, err := screen.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Profile(*profile)
		},
	}
	addFieldFlags(cmd, &fields)
	cmd.Flags().BoolVar(&process, "process", false, "Crop square and re-encode before upload")
	return cmd
}

func addFieldFlags(cmd *cobra.Command, fields *domain.ProfileFields) {
	cmd.Flags().StringVar(&fields.Nombre, "nombre", "", "First name")
	cmd.Flags().StringVar(&fields.Apellidos, "apellidos", "", "Last names")
	cmd.Flags().StringVar(&fields.CodigoEstudiante, "codigo", "", "Student code")
	cmd.Flags().StringVar(&fields.Correo, "correo", "", "Email")
	cmd.Flags().BoolVar(&fields.Requisitoriado, "requisitoriado", false, "Flag the person as wanted")
}

var fieldFlags = map[string]string{
	"nombre":    domain.FieldNombre,
	"apellidos": domain.FieldApellidos,
	"codigo":    domain.FieldCodigoEstudiante,
	"correo":    domain.FieldCorreo,
}

func updateCmd(a *app) *cobra.Command {
	var fields domain.ProfileFields
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a profile; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed("requisitoriado")
			for flag := range fieldFlags {
				changed = changed || cmd.Flags().Changed(flag)
			}
			if !changed {
				return errors.New("nothing to update: pass at least one of --nombre, --apellidos, --codigo, --correo, --requisitoriado")
			}

			deps := a.oneShotDeps(nil)
			list := screens.NewProfileListScreen(deps)
			if err := list.Mount(cmd.Context()); err != nil {
				return err
			}
			profile, err := list.Find(args[0])
			if err != nil {
				return err
			}

			edit := screens.NewEditProfileScreen(deps, profile)
			for flag, field := range fieldFlags {
				if cmd.Flags().Changed(flag) {
					v, _ := fields.Get(field)
					if err := edit.SetField(field, v); err != nil {
						return err
					}
				}
			}
			if cmd.Flags().Changed("requisitoriado") {
				edit.SetFlagged(fields.Requisitoriado)
			}
			return edit.Save(cmd.Context())
		},
	}
	addFieldFlags(cmd, &fields)
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirm screens.Confirmer
			if yes {
				confirm = terminal.AutoConfirm{}
			}
			list := screens.NewProfileListScreen(a.oneShotDeps(confirm))
			if err := list.Mount(cmd.Context()); err != nil {
				return err
			}
			profile, err := list.Find(args[0])
			if err != nil {
				return err
			}

			deleted, err := list.Delete(cmd.Context(), profile)
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(a.stdout, "Cancelado.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
