package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/raaihank/clipboard-cleaner/internal/cleaner"
)

var (
	cleanProfile   string
	cleanTarget    string
	cleanCharset   string
	cleanSniff     bool
	cleanClipboard bool
	cleanWriteBack bool
	cleanFile      string
	cleanJSON      bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run a profile over text",
	Long: `Reads text from stdin, a file or the clipboard and runs a profile over it.
Without --profile the configured default profile is used.

With --target or --charset the input is treated as raw clipboard bytes:
it is decoded first and control characters are replaced before cleaning.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanProfile, "profile", "p", "", "profile name (default: configured default profile)")
	cleanCmd.Flags().StringVarP(&cleanTarget, "target", "t", "", "clipboard target the input bytes came from, e.g. UTF8_STRING")
	cleanCmd.Flags().StringVar(&cleanCharset, "charset", "", "charset of the input bytes, overrides --target")
	cleanCmd.Flags().BoolVar(&cleanSniff, "sniff", false, "guess the charset from content when the target does not name one")
	cleanCmd.Flags().BoolVar(&cleanClipboard, "clipboard", false, "read text from the system clipboard")
	cleanCmd.Flags().BoolVarP(&cleanWriteBack, "write-back", "w", false, "write the result to the system clipboard")
	cleanCmd.Flags().StringVarP(&cleanFile, "file", "f", "", "read input from file instead of stdin")
	cleanCmd.Flags().BoolVar(&cleanJSON, "json", false, "output the result as JSON")

	cleanCmd.MarkFlagsMutuallyExclusive("clipboard", "file")
	cleanCmd.MarkFlagsMutuallyExclusive("clipboard", "target")
	cleanCmd.MarkFlagsMutuallyExclusive("clipboard", "charset")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	var res cleaner.Result
	switch {
	case cleanClipboard:
		text, err := readClipboard()
		if err != nil {
			return err
		}
		if res, err = a.cleaner.CleanText(cleanProfile, text); err != nil {
			return err
		}

	case cleanTarget != "" || cleanCharset != "":
		data, err := readInput(cmd, cleanFile)
		if err != nil {
			return err
		}
		out, err := a.cleaner.Process(cleaner.Request{
			Target:  cleanTarget,
			Charset: cleanCharset,
			Profile: cleanProfile,
			Sniff:   cleanSniff,
			Data:    data,
		})
		if out.Decode.Notice != "" {
			cmd.PrintErrln(out.Decode.Notice)
		}
		if err != nil {
			return err
		}
		res = *out.Result

	default:
		data, err := readInput(cmd, cleanFile)
		if err != nil {
			return err
		}
		if res, err = a.cleaner.CleanText(cleanProfile, string(data)); err != nil {
			return err
		}
	}

	if cleanWriteBack {
		cb, err := openClipboard()
		if err != nil {
			return err
		}
		if err := cb.WriteText(res.Text); err != nil {
			return err
		}
	}

	if cleanJSON {
		return printJSON(cmd, res)
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Text)
	return nil
}

func readClipboard() (string, error) {
	cb, err := openClipboard()
	if err != nil {
		return "", err
	}
	return cb.ReadText()
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
