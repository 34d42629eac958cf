package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hupe1980/incidentmesh"
	"github.com/hupe1980/incidentmesh/config"
	"github.com/hupe1980/incidentmesh/logging"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "incidentmesh",
	Short: "incidentmesh - a multi-agent incident response mesh",
	Long: "incidentmesh coordinates diagnostic and resolution agents over a shared tool host,\n" +
		"mirroring incident tickets into an external issue tracker when one is configured\n" +
		"and simulating the tracker otherwise.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "tracker config file (TOML); falls back to JIRA_* env vars")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(demoCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of incidentmesh",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("incidentmesh v%s\n", version)
	},
}

// newSystem wires a System from the --config file or the environment.
func newSystem() (*incidentmesh.System, error) {
	tracker := config.FromEnv()
	if cfgFile != "" {
		fromFile, err := config.FromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		tracker = fromFile
	}

	level := logging.LogLevelInfo
	if verbose {
		level = logging.LogLevelDebug
	}
	logger := logging.NewSlogLogger(level, "text", false)

	return incidentmesh.New(func(o *incidentmesh.Options) {
		o.TrackerConfig = tracker
		o.Logger = logger
	}), nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
