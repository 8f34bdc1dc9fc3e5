package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/asset"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/config"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/gemini"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/httpclient"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/logging"
	"github.com/cricgurufans-star/AI-Video-Maker/internal/workflow"
)

// generate flags
var (
	topicFlag     string
	industryFlag  string
	templateFlag  string
	styleFlag     string
	verticalFlag  bool
	hookFlag      string
	presenterFlag bool
	motionFlag    bool
	imageFlag     string
	outFlag       string
	modelFlag     string
)

var rootCmd = &cobra.Command{
	Use:   "architect",
	Short: "Generate short marketing videos from a topic and an industry",
	Long: `Architect composes a cinematic marketing prompt from a topic, an industry and
a visual style, submits it to the Veo video model, waits for the render and
saves the finished clip.

Examples:
  architect templates
  architect generate --topic "Downtown Loft" --industry "Real Estate"
  architect generate --topic "Espresso Bar" --industry Hospitality --template luxury --vertical
  architect generate --topic Sneakers --industry Retail --image ./shoe.png --hook "Run the city"`,
	SilenceUsage: true,
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the visual style templates",
	Run: func(cmd *cobra.Command, args []string) {
		printTemplates(cmd.OutOrStdout())
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a video and save it to disk",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&topicFlag, "topic", "t", "", "What the video is about (required)")
	f.StringVarP(&industryFlag, "industry", "i", "", "Industry the video targets (required)")
	f.StringVar(&templateFlag, "template", "", "Style template ID (see: architect templates)")
	f.StringVar(&styleFlag, "style", "", "Free-form visual style; overrides --template")
	f.BoolVar(&verticalFlag, "vertical", false, "Render 9:16 instead of 16:9")
	f.StringVar(&hookFlag, "hook", "", "Text overlay shown in the video")
	f.BoolVar(&presenterFlag, "presenter", false, "Include a human presenter")
	f.BoolVar(&motionFlag, "motion", true, "Use dynamic camera movement")
	f.StringVar(&imageFlag, "image", "", "Reference image path")
	f.StringVarP(&outFlag, "out", "o", asset.DownloadName, "Output file")
	f.StringVarP(&modelFlag, "model", "m", "", "Video model (defaults to VIDEO_MODEL)")

	rootCmd.AddCommand(templatesCmd, generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:     cfg.LogLevel,
		Format:    logging.Console,
		Out:       os.Stderr,
		Component: "cli",
	})

	videoCfg, err := buildConfig()
	if err != nil {
		return err
	}

	model := cfg.VideoModel
	if strings.TrimSpace(modelFlag) != "" {
		model = strings.TrimSpace(modelFlag)
	}

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})
	downloadClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.DownloadTimeout,
	})

	gen := gemini.New(gemini.Options{
		Dial: gemini.NewDialer(gemini.DialOptions{
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			HTTPClient: httpClient,
		}),
		Model:        model,
		PollInterval: cfg.PollInterval,
		Logger:       &logger,
	})

	assets := asset.NewResolver(asset.Options{
		HTTPClient: downloadClient,
		Logger:     &logger,
	})

	out := cmd.ErrOrStderr()
	ctrl := workflow.New(workflow.Options{
		Generator:  gen,
		Assets:     assets,
		Credential: cfg.GeminiAPIKey,
		Resolution: cfg.VideoResolution,
		Listener:   progressPrinter(out),
		Logger:     &logger,
	})
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("topic", videoCfg.Topic).
		Str("industry", videoCfg.Industry).
		Str("aspect_ratio", string(videoCfg.AspectRatio)).
		Str("model", gen.Model()).
		Msg("starting generation")

	return generateVideo(ctx, ctrl, videoCfg, outFlag, logger)
}

// generateVideo runs one workflow to completion and writes the clip to path.
func generateVideo(ctx context.Context, ctrl *workflow.Controller, cfg architect.VideoConfig, path string, logger zerolog.Logger) error {
	st, ok := ctrl.Generate(ctx, cfg)
	if !ok {
		return errors.New("topic and industry are required")
	}
	if st.Step != workflow.StepComplete {
		return errors.New(st.Message)
	}

	handle, err := ctrl.Playback()
	if err != nil {
		return fmt.Errorf("video generated but could not be downloaded: %w", err)
	}
	data, ok := handle.Bytes()
	if !ok {
		return errors.New("video is no longer available")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info().Str("path", path).Int("bytes", len(data)).Msg("video saved")
	return nil
}

func buildConfig() (architect.VideoConfig, error) {
	cfg := architect.DefaultConfig()
	cfg.Topic = strings.TrimSpace(topicFlag)
	cfg.Industry = strings.TrimSpace(industryFlag)
	cfg.HookText = strings.TrimSpace(hookFlag)
	cfg.IncludePresenter = presenterFlag
	cfg.UseMotionTracking = motionFlag
	if verticalFlag {
		cfg.AspectRatio = architect.Vertical
	}

	if id := strings.TrimSpace(templateFlag); id != "" {
		t, ok := architect.TemplateByID(id)
		if !ok {
			return cfg, fmt.Errorf("unknown template %q", id)
		}
		cfg.Style = t.PromptModifier
	}
	if style := strings.TrimSpace(styleFlag); style != "" {
		cfg.Style = style
	}

	if !cfg.Ready() {
		return cfg, errors.New("--topic and --industry are required")
	}

	if path := strings.TrimSpace(imageFlag); path != "" {
		ref, err := loadReference(path)
		if err != nil {
			return cfg, err
		}
		cfg.ReferenceImage = ref
	}

	return cfg, nil
}

func loadReference(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read reference image: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mimeType)
	}
	return gemini.DataURL(mimeType, data), nil
}
