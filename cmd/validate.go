package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridsim/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a configuration file without running a simulation",
	RunE:  validate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	specs, err := config.Specs(cfg.Plants)
	if err != nil {
		return err
	}
	dispatchable := 0
	for _, s := range specs {
		if s.Type.Dispatchable() {
			dispatchable++
		}
	}
	fmt.Printf("configuration ok: %d plants (%d dispatchable), horizon %d, %d episodes\n",
		len(specs), dispatchable, cfg.Forecast.Horizon, cfg.Sim.Episodes)
	return nil
}
