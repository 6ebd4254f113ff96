package cmd

import (
	"fmt"
	"os"

	"github.com/corplang/mp/pkg/corplang"
	"github.com/spf13/cobra"
)

var parseEvalExpr string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Corplang file or expression and dump its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline source instead of reading from file")
}

func parseScript(cmd *cobra.Command, args []string) error {
	source, file, err := readSource(parseEvalExpr, args)
	if err != nil {
		return err
	}

	prog, perr := corplang.Parse(source, file)
	if prog != nil {
		fmt.Println(prog.String())
	}
	if perr != nil {
		fmt.Fprintln(os.Stderr, perr)
		return fmt.Errorf("parsing failed")
	}
	return nil
}
