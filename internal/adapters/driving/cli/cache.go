package cli

import (
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Stage cache commands",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop memoised stage outputs",
	Long: `Drop memoised stage outputs for one document, or for every document
when --document is not given. Does nothing when caching is disabled.`,
	RunE: runCacheClear,
}

var cacheDocument string

func init() {
	cacheClearCmd.Flags().StringVar(&cacheDocument, "document", "", "Content hash of the document to forget")
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if proposalService == nil {
		return errNoProposalService
	}
	if err := proposalService.InvalidateCache(cmd.Context(), cacheDocument); err != nil {
		return err
	}
	if cacheDocument == "" {
		cmd.Println("Stage cache cleared")
	} else {
		cmd.Printf("Stage cache cleared for %s\n", cacheDocument)
	}
	return nil
}
