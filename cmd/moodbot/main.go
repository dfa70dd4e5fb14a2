// Moodbot - webcam emotion detection with a supportive chatbot
// Classifies the user's face, stabilizes the emotion and answers with canned responses
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-moodbot/internal/config"
	"github.com/teslashibe/go-moodbot/internal/log"
	"github.com/teslashibe/go-moodbot/pkg/app"
	"github.com/teslashibe/go-moodbot/pkg/camera"
	"github.com/teslashibe/go-moodbot/pkg/debug"
	"github.com/teslashibe/go-moodbot/pkg/detection"
	"github.com/teslashibe/go-moodbot/pkg/pipeline"
	"github.com/teslashibe/go-moodbot/pkg/term"
	"github.com/teslashibe/go-moodbot/pkg/vision"
	"github.com/teslashibe/go-moodbot/pkg/watch"
)

// Set at build time
var version = "dev"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "moodbot",
		Short:         "Emotion detection chatbot",
		Long:          titleStyle.Render("Moodbot") + "\n\nDetects your emotion through the webcam and answers with a matching message.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), watchCmd(), versionCmd())
	return root
}

func serveCmd() *cobra.Command {
	v := config.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the detection pipeline and the web dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "config file (default ./moodbot.yaml or $HOME/.moodbot/moodbot.yaml)")
	f.String("port", "8080", "dashboard port")
	f.String("camera", "0", "camera index, device path or stream URL")
	f.String("model", "", "emotion classifier ONNX file")
	f.String("locator", "", "face locator: haar or yunet")
	f.Bool("simulate", false, "skip the models and simulate emotions")
	f.Bool("auto-start", false, "start the pipeline without waiting for a login")
	f.Bool("terminal", false, "also print state changes to the terminal")
	f.Bool("debug", false, "enable verbose debug logging")
	f.Bool("debug-frames", false, "log every frame (very verbose)")

	bind(v, f.Lookup("port"), "web.port")
	bind(v, f.Lookup("camera"), "camera.device")
	bind(v, f.Lookup("model"), "model.classifier")
	bind(v, f.Lookup("locator"), "model.locator")
	bind(v, f.Lookup("simulate"), "pipeline.simulate")
	bind(v, f.Lookup("auto-start"), "pipeline.auto_start")
	bind(v, f.Lookup("terminal"), "ui.terminal")
	bind(v, f.Lookup("debug"), "log.debug")
	bind(v, f.Lookup("debug-frames"), "log.frames")
	return cmd
}

func bind(v *viper.Viper, flag *pflag.Flag, key string) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	level := cfg.Log.Level
	if cfg.Log.Debug {
		level = "debug"
	}
	log.Init(level)
	debug.Enabled = cfg.Log.Debug
	debug.Frames = cfg.Log.Frames

	fmt.Println(titleStyle.Render("Moodbot " + version))

	a, err := app.New(cfg,
		app.WithAnalyzerFactory(loadAnalyzer),
		app.WithOpenerFactory(func(m *camera.Manager) pipeline.CameraOpener {
			return vision.Opener(m, log.Component("camera"))
		}),
	)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := a.Init(); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.Shutdown()

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("runtime error: %w", err)
	}
	return nil
}

func loadAnalyzer(cfg detection.Config) (app.Analyzer, error) {
	an, err := vision.NewAnalyzer(cfg, log.Component("vision"))
	if err != nil {
		return nil, err
	}
	return an, nil
}

func watchCmd() *cobra.Command {
	var url string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a running moodbot from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Init("info")
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			c := watch.New(url, term.New(os.Stdout), log.Component("watch"))
			c.Reconnect = !once
			return c.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://localhost:8080/ws/updates", "updates endpoint")
	cmd.Flags().BoolVar(&once, "once", false, "exit when the connection drops instead of reconnecting")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("moodbot " + version)
		},
	}
}
