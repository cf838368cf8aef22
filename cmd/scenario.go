package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsim/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario <file>",
	Short: "Replay a YAML scenario file and check its expectations",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenario,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenarios.Load(args[0])
	if err != nil {
		return err
	}
	res, err := scenarios.Replay(sc)
	if err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	if err := sc.Check(res); err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	fmt.Printf("scenario %s ok: %s after %d steps, total reward %.1f, unmet %.1f MW\n",
		sc.Name, res.Outcome, res.Steps, res.TotalReward, res.CumulativeUnmetMW)
	return nil
}
