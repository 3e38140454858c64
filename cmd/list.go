package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	sim "github.com/inference-sim/ddos-sim/sim"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios, built-in workload presets and service-time distributions",
	Run: func(cmd *cobra.Command, args []string) {
		writeCatalog(os.Stdout)
	},
}

func writeCatalog(w io.Writer) {
	fmt.Fprintln(w, "Scenarios:")
	for _, name := range sim.ScenarioNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w, "Workload presets:")
	for _, name := range workload.PresetNames() {
		spec, _ := workload.Preset(name)
		fmt.Fprintf(w, "  %-16s legitimate=%s attack=%s points=%d\n",
			name, spec.Legitimate.Process, spec.Attack.Process, len(spec.SweepPoints()))
	}
	fmt.Fprintln(w, "Service-time distributions:")
	for _, name := range workload.DistNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
