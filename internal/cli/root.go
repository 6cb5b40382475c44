package cli

import (
    "fmt"

    "github.com/spf13/cobra"
)

// Execute runs the spec2model CLI.
func Execute() error {
    return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:           "spec2model",
        Short:         "Resolve entity models and relationships from Swagger/OpenAPI specs",
        Long:          "spec2model catalogs the operations of a Swagger/OpenAPI document, resolves its schemas to named types, and infers entity relationships with confidence scoring.",
        SilenceErrors: true,
        SilenceUsage:  true,
        RunE: func(cmd *cobra.Command, args []string) error {
            return cmd.Help()
        },
    }

    // Convert Cobra flag errors (like unknown flags) into friendly usage errors
    // that also show the command's help text.
    flagErr := func(c *cobra.Command, err error) error {
        return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
    }
    cmd.SetFlagErrorFunc(flagErr)

    cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML)")
    cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

    for _, sub := range []*cobra.Command{newAnalyzeCmd(), newExportCmd(), newInitCmd()} {
        sub.SetFlagErrorFunc(flagErr)
        cmd.AddCommand(sub)
    }

    return cmd
}
