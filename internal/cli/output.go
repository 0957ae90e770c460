package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// emit writes v as indented JSON, or text for the text format.
func emit(cmd *cobra.Command, opts *RootOptions, v interface{}, text string) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
