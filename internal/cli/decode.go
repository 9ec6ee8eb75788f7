package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raaihank/clipboard-cleaner/internal/encoding"
)

var errDecode = errors.New("decoding failed")

var (
	decodeTarget  string
	decodeCharset string
	decodeSniff   bool
	decodeFile    string
	decodeJSON    bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode raw clipboard bytes to text",
	Long: `Decodes bytes from stdin or a file using the charset named by a clipboard
target such as UTF8_STRING or text/plain;charset=utf-16. Control characters
in the result are replaced with U+FFFD.`,
	Args: cobra.NoArgs,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeTarget, "target", "t", "", "clipboard target the bytes came from")
	decodeCmd.Flags().StringVar(&decodeCharset, "charset", "", "charset of the bytes, overrides --target")
	decodeCmd.Flags().BoolVar(&decodeSniff, "sniff", false, "guess the charset from content when the target does not name one")
	decodeCmd.Flags().StringVarP(&decodeFile, "file", "f", "", "read input from file instead of stdin")
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	data, err := readInput(cmd, decodeFile)
	if err != nil {
		return err
	}

	res := a.cleaner.DecodeTarget(decodeTarget, decodeCharset, data, decodeSniff)
	if decodeJSON {
		if err := printJSON(cmd, res); err != nil {
			return err
		}
	} else if res.OK {
		fmt.Fprint(cmd.OutOrStdout(), res.Text)
	}

	if !res.OK {
		return fmt.Errorf("%w: %s", errDecode, res.Notice)
	}
	if res.Notice != "" && !decodeJSON {
		cmd.PrintErrln(res.Notice)
	}
	return nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve TARGET...",
	Short: "Show the charset a clipboard target resolves to",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, target := range args {
			if charset, ok := encoding.ResolveTargetEncoding(target); ok {
				fmt.Fprintf(out, "%s\t%s\n", target, charset)
			} else {
				fmt.Fprintf(out, "%s\t(none)\n", target)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
