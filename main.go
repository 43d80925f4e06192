// Package main provides the entry point for the bolo CLI application.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
	"github.com/dgnsrekt/bolo/ui"
	"github.com/dgnsrekt/bolo/utils"
	gap "github.com/muesli/go-app-paths"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	say        bool
	mouse      bool

	rootCmd = &cobra.Command{
		Use:   "bolo [TEXT...]",
		Short: "Speak mixed Hindi and English text",
		Long: paragraph(
			fmt.Sprintf("\nSpeak mixed %s and English text, one voice per script.", keyword("हिन्दी")),
		),
		Example:          paragraph("bolo\nbolo --say \"Hello, मेरा नाम Yash है.\"\necho \"नमस्ते world\" | bolo"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(_ *cobra.Command) error {
	mouse = viper.GetBool("mouse")

	if rate := viper.GetFloat64("rate"); speech.ValidateRate(rate) != nil {
		return fmt.Errorf("invalid rate %.2f: must be between %.1f and %.1f", rate, speech.MinRate, speech.MaxRate)
	}
	if pitch := viper.GetFloat64("pitch"); speech.ValidatePitch(pitch) != nil {
		return fmt.Errorf("invalid pitch %.2f: must be between %.1f and %.1f", pitch, speech.MinPitch, speech.MaxPitch)
	}
	if level := viper.GetInt("cache.compression"); level < 0 || level > 22 {
		return fmt.Errorf("invalid cache compression level %d: must be between 0 and 22", level)
	}
	if size := viper.GetInt("cache.max_size"); size < 1 || size > 10000 {
		return fmt.Errorf("cache max_size must be between 1 and 10000 MB, got %d", size)
	}

	// Plain output when stdout is not a terminal.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// readText joins args with piped stdin, args first.
func readText(args []string, stdin io.Reader) (string, bool, error) {
	text := utils.JoinArgs(args)

	piped, err := stdinIsPipe()
	if err != nil || !piped {
		return text, false, err
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", false, fmt.Errorf("unable to read from stdin: %w", err)
	}
	return strings.TrimSpace(text + " " + string(b)), true, nil
}

func execute(cmd *cobra.Command, args []string) error {
	text, piped, err := readText(args, os.Stdin)
	if err != nil {
		return err
	}

	if say || piped || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runSay(cmd.Context(), text, cmd.OutOrStdout())
	}
	return runTUI(text)
}

func runTUI(text string) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.Text = text
	cfg.EnableMouse = mouse

	p, err := openPlatform()
	if err != nil {
		return err
	}
	defer p.Close() //nolint:errcheck

	d := p.dispatcher()
	defer d.Stop()

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, d).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().Float64P("rate", "r", speech.DefaultRate, "speaking rate (0.6 to 1.6)")
	rootCmd.PersistentFlags().Float64P("pitch", "p", speech.DefaultPitch, "voice pitch (0.5 to 2.0)")
	rootCmd.PersistentFlags().StringP("voice", "v", voice.Auto, "voice name, or auto to pick one per language")
	rootCmd.PersistentFlags().Bool("debug", false, "write debug output to the log file")
	rootCmd.Flags().BoolVarP(&say, "say", "s", false, "speak once and exit instead of starting the TUI")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("rate", rootCmd.PersistentFlags().Lookup("rate"))
	_ = viper.BindPFlag("pitch", rootCmd.PersistentFlags().Lookup("pitch"))
	_ = viper.BindPFlag("voice", rootCmd.PersistentFlags().Lookup("voice"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("rate", speech.DefaultRate)
	viper.SetDefault("pitch", speech.DefaultPitch)
	viper.SetDefault("voice", voice.Auto)
	viper.SetDefault("intermediate_errors", false)
	viper.SetDefault("espeak.binary", "")
	viper.SetDefault("espeak.data_dir", "")
	viper.SetDefault("espeak.rate_limit", 20)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.max_size", 256)
	viper.SetDefault("cache.compression", 3)

	rootCmd.AddCommand(configCmd, manCmd, chunksCmd, voicesCmd, cacheCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "bolo")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "bolo")}, dirs...)
	}

	if c := os.Getenv("BOLO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("bolo")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("bolo")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "bolo.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
