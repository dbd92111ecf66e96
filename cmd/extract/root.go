// cmd/extract/root.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"ecoscan-workers/internal/extraction"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var file string

	root := &cobra.Command{
		Use:          "extract",
		Short:        "Extract structured records from chat-model replies",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&file, "file", "f", "", "Read the message from this file instead of stdin")

	readMessage := func(cmd *cobra.Command) (string, error) {
		var r io.Reader = cmd.InOrStdin()
		if file != "" {
			f, err := os.Open(file)
			if err != nil {
				return "", fmt.Errorf("opening message: %w", err)
			}
			defer f.Close()
			r = f
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("reading message: %w", err)
		}
		return string(data), nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "recommendations",
			Short: "Print the intro text and normalized recommendations, or null",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				msg, err := readMessage(cmd)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), extraction.ExtractRecommendations(msg))
			},
		},
		&cobra.Command{
			Use:   "disposal",
			Short: "Print the normalized disposal record, or null",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				msg, err := readMessage(cmd)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), extraction.ExtractDisposalRecord(msg))
			},
		},
		&cobra.Command{
			Use:   "strip",
			Short: "Print the message with the embedded payload removed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				msg, err := readMessage(cmd)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), extraction.StripEmbeddedJSON(msg))
				return err
			},
		},
		newClassifyCmd(readMessage),
	)

	return root
}

func newClassifyCmd(readMessage func(*cobra.Command) (string, error)) *cobra.Command {
	var variant string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print which outcome extracting the message ends in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := extraction.Variant(variant)
			if v != extraction.VariantRecommendations && v != extraction.VariantDisposal {
				return fmt.Errorf("unknown variant %q", variant)
			}
			msg, err := readMessage(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), extraction.Classify(msg, v))
			return err
		},
	}
	cmd.Flags().StringVar(&variant, "variant", string(extraction.VariantRecommendations), "recommendations or disposal")
	return cmd
}

// writeJSON prints v indented. A nil pointer prints null.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
