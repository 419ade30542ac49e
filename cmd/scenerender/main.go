// Command scenerender renders YAML scenes to PNG files, browsers and windows.
package main

import (
	"fmt"
	"image/png"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	scene "github.com/nimsforest/nimsforestscene"
	"github.com/nimsforest/nimsforestscene/ebitenview"
	"github.com/nimsforest/nimsforestscene/internal/scenefile"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "scenerender",
		Short:         "Render nimsforestscene scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("scene", "", "YAML scene file (defaults to a built-in demo)")
	root.AddCommand(newRenderCommand(), newServeCommand())
	return root
}

func loadScene(cmd *cobra.Command) (*scenefile.Scene, error) {
	path, _ := cmd.Flags().GetString("scene")
	if path == "" {
		return scenefile.Demo(), nil
	}
	return scenefile.Load(path)
}

func newRenderCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to a PNG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScene(cmd)
			if err != nil {
				return err
			}
			canvas, err := s.Build()
			if err != nil {
				return err
			}
			defer canvas.Close()

			frame, err := canvas.Render(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()
			if err := png.Encode(f, frame.Image); err != nil {
				return fmt.Errorf("encode %s: %w", out, err)
			}

			color.Green("wrote %s (%dx%d, %d visuals, %d culled)",
				out, frame.Width(), frame.Height(), len(frame.Visuals), frame.Culled)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "scene.png", "output PNG path")
	return cmd
}

func newServeCommand() *cobra.Command {
	var (
		addr     string
		interval time.Duration
		window   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a scene over HTTP until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScene(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := log.New(os.Stderr, "scenerender: ", log.LstdFlags)
			canvas, err := s.Build(scene.WithInterval(interval), scene.WithLogger(logger))
			if err != nil {
				return err
			}
			defer canvas.Close()

			webTarget, err := scene.NewWebTarget(addr, scene.WithWebLogger(logger))
			if err != nil {
				return err
			}
			if err := canvas.AddTarget(webTarget); err != nil {
				return fmt.Errorf("add web target: %w", err)
			}

			var win *ebitenview.Window
			if window {
				w, h := canvas.Size()
				win = ebitenview.New(w, h, ebitenview.WithTitle("scenerender"))
				if err := canvas.AddTarget(win); err != nil {
					return fmt.Errorf("add window target: %w", err)
				}
			}

			if err := canvas.Start(ctx); err != nil {
				return err
			}
			color.Cyan("serving %s", webTarget.URL())
			color.Cyan("  - API: %s/api/frame", webTarget.URL())

			if win != nil {
				go func() {
					<-ctx.Done()
					win.Close()
				}()
				// ebiten needs the main goroutine; returns when the window closes.
				if err := win.Run(); err != nil {
					return err
				}
				stop()
			}

			<-ctx.Done()
			color.Yellow("shutting down")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "redraw check interval")
	cmd.Flags().BoolVar(&window, "window", false, "also open a desktop window")
	return cmd
}
