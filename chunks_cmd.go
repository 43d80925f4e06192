package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dgnsrekt/bolo/internal/script"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var chunksYAML bool

var chunksCmd = &cobra.Command{
	Use:     "chunks [TEXT...]",
	Short:   "Show how text is split into same-script chunks",
	Long:    paragraph(fmt.Sprintf("\n%s text into contiguous Devanagari and non-Devanagari runs, the same way it is spoken.", keyword("Split"))),
	Example: paragraph("bolo chunks \"Hello, मेरा नाम Yash है.\"\necho \"नमस्ते world\" | bolo chunks --yaml"),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _, err := readText(args, os.Stdin)
		if err != nil {
			return err
		}
		return printChunks(cmd.OutOrStdout(), script.Split(text), chunksYAML)
	},
}

func printChunks(w io.Writer, chunks []script.Chunk, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if chunks == nil {
			chunks = []script.Chunk{}
		}
		if err := enc.Encode(chunks); err != nil {
			return fmt.Errorf("unable to encode chunks: %w", err)
		}
		return enc.Close() //nolint:wrapcheck
	}

	for _, c := range chunks {
		if _, err := fmt.Fprintf(w, "%s  %s\n", keyword(string(c.Lang)), c.Text); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
	}
	return nil
}

func init() {
	chunksCmd.Flags().BoolVar(&chunksYAML, "yaml", false, "print chunks as YAML")
}
