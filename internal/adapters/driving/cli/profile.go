package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/bidflow/internal/core/domain"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Business profile commands",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the business profile the pipelines will use",
	Long: `Print the business profile text. When the configured file is missing
the built-in default profile is shown.`,
	RunE: runProfileShow,
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	if proposalService == nil {
		return errNoProposalService
	}

	profile := proposalService.Profile()
	if profile.Source == domain.ProfileSourceFile {
		cmd.PrintErrf("Source: %s\n", profile.Path)
	} else {
		cmd.PrintErrf("Source: built-in default (%s not found)\n", profile.Path)
	}
	cmd.Println(profile.Text)
	return nil
}
