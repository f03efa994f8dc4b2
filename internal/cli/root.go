package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the openapi-validator CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openapi-validator",
		Short: "Check HTTP responses and objects against OpenAPI 2/3 documents",
		Long: "openapi-validator checks captured HTTP responses (and standalone objects) against " +
			"the servers, paths, operations, statuses and schemas declared in a Swagger 2.0 or OpenAPI 3.x document.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Flag errors (like unknown flags) become usage errors that carry the help text.
	cmd.SetFlagErrorFunc(flagUsageError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")

	for _, sub := range []*cobra.Command{newValidateCmd(), newSchemaCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagUsageError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
