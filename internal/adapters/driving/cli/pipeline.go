package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bidflow/internal/adapters/driven/config/file"
	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driving"
	"github.com/custodia-labs/bidflow/internal/normalisers"
)

// DefaultProposalFile is written when --output names a directory.
const DefaultProposalFile = "Strategic_Proposal.txt"

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Highlight the key requirements of a tender",
	Long:  `Reads a PDF, DOCX, HTML or text document and lists its 5 most important technical requirements.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var proposeCmd = &cobra.Command{
	Use:   "propose [file]",
	Short: "Write a proposal for a tender",
	Long: `Audits the tender against your business profile, then writes a four-section
proposal: Executive Summary, Proposed Solution, Past Experience, Call to Action.

The proposal is printed unless --output is given. When --output is a
directory the file is named ` + DefaultProposalFile + `.`,
	Args: cobra.ExactArgs(1),
	RunE: runPropose,
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a custom pipeline from a YAML definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomPipeline,
}

// Pipeline command flags.
var (
	outputPath   string
	noCache      bool
	pipelinePath string
)

func init() {
	for _, c := range []*cobra.Command{extractCmd, proposeCmd, runCmd} {
		c.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result to this file or directory")
		c.Flags().BoolVar(&noCache, "no-cache", false, "Ignore memoised stage outputs")
		rootCmd.AddCommand(c)
	}
	runCmd.Flags().StringVarP(&pipelinePath, "pipeline", "p", "", "Pipeline definition (YAML)")
	_ = runCmd.MarkFlagRequired("pipeline")
}

var errNoProposalService = errors.New("proposal service not configured")

func runExtract(cmd *cobra.Command, args []string) error {
	if proposalService == nil {
		return errNoProposalService
	}
	return runDocumentPipeline(cmd, args[0], "", proposalService.ExtractRequirements)
}

func runPropose(cmd *cobra.Command, args []string) error {
	if proposalService == nil {
		return errNoProposalService
	}
	return runDocumentPipeline(cmd, args[0], DefaultProposalFile, proposalService.GenerateProposal)
}

func runCustomPipeline(cmd *cobra.Command, args []string) error {
	if proposalService == nil {
		return errNoProposalService
	}
	name, stages, err := file.LoadPipeline(pipelinePath)
	if err != nil {
		return err
	}
	run := func(ctx context.Context, raw *domain.RawDocument, opts driving.RunOptions) (*domain.ProposalArtifact, error) {
		return proposalService.RunPipeline(ctx, name, stages, raw, opts)
	}
	return runDocumentPipeline(cmd, args[0], name+".txt", run)
}

type pipelineFunc func(context.Context, *domain.RawDocument, driving.RunOptions) (*domain.ProposalArtifact, error)

func runDocumentPipeline(cmd *cobra.Command, path, defaultName string, run pipelineFunc) error {
	raw, err := normalisers.ReadFile(path)
	if err != nil {
		return err
	}

	artifact, err := run(cmd.Context(), raw, driving.RunOptions{
		NoCache: noCache,
		OnStage: newProgress(cmd.ErrOrStderr()),
	})
	if err != nil {
		return explain(err)
	}

	if outputPath == "" {
		cmd.Println(artifact.Content)
		return nil
	}

	target, err := resolveOutput(outputPath, defaultName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, []byte(artifact.Content), 0600); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	cmd.PrintErrf("Wrote %s\n", target)
	return nil
}

// resolveOutput returns path, or path/defaultName when path is a directory.
func resolveOutput(path, defaultName string) (string, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		if defaultName == "" {
			return "", fmt.Errorf("%s is a directory", path)
		}
		return filepath.Join(path, defaultName), nil
	case err == nil, errors.Is(err, os.ErrNotExist):
		return path, nil
	default:
		return "", err
	}
}
