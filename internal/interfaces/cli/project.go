package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	domain "github.com/civitas-ai/opinionspace/internal/domain/opinionspace"
	"github.com/civitas-ai/opinionspace/internal/domain/simulation"
	"github.com/civitas-ai/opinionspace/pkg/errors"
)

type projectOptions struct {
	includeBridges bool
	layoutRounds   int
}

func newProjectCommand(root *rootOptions) *cobra.Command {
	opts := &projectOptions{}

	cmd := &cobra.Command{
		Use:   "project <simulation.json>",
		Short: "Project a simulation snapshot into the opinion space",
		Long: "Reads a simulation snapshot from a JSON file, runs the projection engine\n" +
			"locally, and prints the result.  No server or database is required.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProject(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.includeBridges, "include-bridges", false, "include persuasion-bridge analysis")
	cmd.Flags().IntVar(&opts.layoutRounds, "layout-rounds", 0, "force-layout refinement rounds (0 uses the default)")

	return cmd
}

func runProject(cmd *cobra.Command, root *rootOptions, opts *projectOptions, path string) error {
	sim, err := readSimulation(path)
	if err != nil {
		return err
	}

	var engineOpts []domain.EngineOption
	if opts.layoutRounds > 0 {
		engineOpts = append(engineOpts, domain.WithLayoutRounds(opts.layoutRounds))
	}
	engine := domain.NewEngine(engineOpts...)
	proj := engine.Project(sim, domain.Options{IncludeBridges: opts.includeBridges})

	switch root.output {
	case "summary":
		return printSummary(cmd, proj)
	case "", "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(proj)
	default:
		return errors.NewValidation("unknown output format: " + root.output)
	}
}

func readSimulation(path string) (*simulation.Simulation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var sim simulation.Simulation
	if err := json.Unmarshal(data, &sim); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "parse snapshot")
	}
	if sim.Status == "" {
		sim.Status = simulation.StatusCompleted
	}
	if err := sim.Validate(); err != nil {
		return nil, err
	}
	return &sim, nil
}

func printSummary(cmd *cobra.Command, proj *domain.Projection) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Simulation: %s (%s)\n", proj.Metadata.Title, proj.Metadata.SimulationID)
	fmt.Fprintf(out, "Agents: %d  Clusters: %d  Bridges: %d\n\n",
		proj.Metadata.TotalAgents, proj.Metadata.TotalClusters, len(proj.Bridges))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLUSTER\tAGENTS\tAVG SCORE\tCOHESION\tEMOTION")
	for _, c := range proj.Clusters {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%s\n",
			c.Name, c.AgentCount, c.AvgScore, c.Cohesion, c.DominantEmotion)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, b := range proj.Bridges {
		fmt.Fprintf(out, "\nbridge %s -> %s  strength=%.2f type=%s\n",
			b.SourceID, b.TargetID, b.Strength, b.BridgeType)
	}
	return nil
}
