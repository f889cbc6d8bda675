package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"decoder/internal/blocks"
)

var convertLimit int

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Print the document blocks for a Markdown file",
	Long: `Converts Markdown (from the file argument or stdin) into the blocks that
would be written to the document store, printed as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().IntVar(&convertLimit, "limit", blocks.MaxFragment, "maximum characters per text fragment")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	md, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read markdown: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(blocks.FromMarkdownWithLimit(string(md), convertLimit))
}
