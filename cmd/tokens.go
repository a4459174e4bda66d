package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/verolang/vero/internal/lexer"
	"github.com/verolang/vero/internal/ui"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Dump the token stream of a .vero file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunTokens(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func RunTokens(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	toks, diags := lexer.Tokenize(string(data))
	for _, t := range toks {
		ui.TokenLine(w, t.Pos.String(), t.Type.String(), t.Lexeme)
	}
	for _, d := range diags {
		ui.DiagLine(w, path, d.Pos.Line, d.Pos.Col, d.Message)
	}
	return nil
}
