package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

const exampleRecipe = `# acal brain recipe
# p is the probability that any given synapse exists.
p: 0.05
seed: 42
plasticity: true

logging:
  level: info

areas:
  - name: A
    neurons: 1000
    quota: 31       # winners per round; 0 = floor(sqrt(neurons))
    beta: 0.05
  - name: B
    neurons: 1000
    quota: 31
    beta: 0.05

stimuli:
  - name: stim
    neurons: 100
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "acal",
		Short: "Assembly calculus - brain-like area simulation",
		Long: `acal simulates the assembly calculus: populations of neurons ("areas")
wired by random synaptic matrices, where repeated firing rounds select
winning neuron subsets and Hebbian plasticity strengthens the synapses
that produced them.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("db", ".acal", "Directory holding the run database")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newRunCmd(),
		newInspectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{"version": version})
			} else {
				fmt.Printf("acal version %s\n", version)
			}
		},
	}
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example brain recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("recipe")

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("refusing to overwrite existing %s", path)
			}
			if err := os.WriteFile(path, []byte(exampleRecipe), 0644); err != nil {
				return fmt.Errorf("failed to write recipe: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(os.Stdout).Encode(map[string]string{
					"status": "initialized",
					"recipe": path,
				})
			} else {
				fmt.Printf("Wrote example recipe to %s\n", path)
				fmt.Println("Edit it, then simulate with 'acal run --fire stim:A'.")
			}
			return nil
		},
	}

	cmd.Flags().String("recipe", "recipe.yaml", "Path for the example recipe")

	return cmd
}
