package main

import (
	"fmt"
	"io"

	"github.com/dgnsrekt/bolo/internal/script"
	"github.com/dgnsrekt/bolo/internal/speech"
	"github.com/dgnsrekt/bolo/internal/voice"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var voicesYAML bool

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List installed voices",
	Long:  paragraph(fmt.Sprintf("\n%s the voices espeak-ng provides, and the voice each language resolves to.", keyword("List"))),
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := openPlatform()
		if err != nil {
			return err
		}
		defer p.Close() //nolint:errcheck

		out := p.speechOutput()
		if out == nil {
			return speech.ErrUnsupported
		}
		return printVoices(cmd.OutOrStdout(), out.Voices(), viper.GetString("voice"), voicesYAML)
	},
}

type voiceListing struct {
	Voices   []voice.Voice          `yaml:"voices"`
	Resolved map[script.Lang]string `yaml:"resolved"`
}

func printVoices(w io.Writer, voices []voice.Voice, selection string, asYAML bool) error {
	resolved := make(map[script.Lang]string, 2)
	for _, lang := range []script.Lang{script.LangHindi, script.LangEnglish} {
		if v, ok := voice.Resolve(lang, selection, voices); ok {
			resolved[lang] = v.Name
		}
	}

	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(voiceListing{Voices: voices, Resolved: resolved}); err != nil {
			return fmt.Errorf("unable to encode voices: %w", err)
		}
		return enc.Close() //nolint:wrapcheck
	}

	if len(voices) == 0 {
		_, err := fmt.Fprintln(w, "no voices installed")
		return err //nolint:wrapcheck
	}

	width := 0
	for _, v := range voices {
		width = max(width, runewidth.StringWidth(v.Name))
	}
	for _, v := range voices {
		if _, err := fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(v.Name, width), faint(v.Lang)); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}

	fmt.Fprintln(w) //nolint:errcheck
	for _, lang := range []script.Lang{script.LangHindi, script.LangEnglish} {
		name, ok := resolved[lang]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s → %s\n", selection, keyword(string(lang)), name); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}
	return nil
}

func init() {
	voicesCmd.Flags().BoolVar(&voicesYAML, "yaml", false, "print voices as YAML")
}
