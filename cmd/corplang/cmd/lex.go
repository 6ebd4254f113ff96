package cmd

import (
	"fmt"
	"os"

	"github.com/corplang/mp/pkg/corplang"
	"github.com/spf13/cobra"
)

var (
	lexShowPos  bool
	lexEvalExpr string
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Corplang file or expression",
	Args:  cobra.MaximumNArgs(1),
	RunE:  lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline source instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show each token's line:column")
}

func lexScript(cmd *cobra.Command, args []string) error {
	source, file, err := readSource(lexEvalExpr, args)
	if err != nil {
		return err
	}

	toks, errs := corplang.Lex(source, file)
	for _, t := range toks {
		if lexShowPos {
			fmt.Printf("%-12s %-20q @%s\n", t.Kind, t.Text, t.Pos)
		} else {
			fmt.Printf("%-12s %q\n", t.Kind, t.Text)
		}
	}
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("lexing failed with %d error(s)", len(errs))
	}
	return nil
}
