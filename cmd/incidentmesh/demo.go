package main

import (
	"fmt"

	"github.com/hupe1980/incidentmesh/incident"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the full incident response workflow end to end",
	Long: "Creates a high severity incident, runs diagnosis and remediation through the\n" +
		"agents and walks the incident to resolved, syncing every step to the issue\n" +
		"tracker (or its simulation when no tracker is configured).",
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Cleanup()

	id, err := sys.CreateIncident(incident.Params{
		Title:           "Database connection pool exhausted",
		Description:     "Application servers report connection timeouts against the primary database.",
		Severity:        incident.SeverityHigh,
		AffectedSystems: []string{"db-primary", "api-gateway"},
		Tags:            []string{"database", "connections"},
	})
	if err != nil {
		return err
	}
	fmt.Printf("== created incident %s\n", id)

	report, err := sys.AnalyzeIncident(id)
	if err != nil {
		return err
	}
	fmt.Printf("== diagnosis: root cause %q (%v confidence)\n", report["root_cause"], report["confidence"])

	if _, err := sys.UpdateIncident(id, incident.StatusIdentified, "Root cause identified by diagnostic agent", nil); err != nil {
		return err
	}

	status, err := sys.ImplementResolution(id)
	if err != nil {
		return err
	}
	fmt.Printf("== remediation: %v step(s), all applied: %v\n", status["step_count"], status["all_applied"])

	doc, err := sys.UpdateIncident(id, incident.StatusResolved, "Remediation complete, service restored", sys.ResolutionSteps(id))
	if err != nil {
		return err
	}

	fmt.Println("== final incident state:")
	if err := printJSON(doc); err != nil {
		return err
	}

	alerts := sys.Alerts()
	fmt.Printf("== %d notification(s) sent\n", len(alerts))
	for _, a := range alerts {
		fmt.Printf("   [%s] %s\n", a.Severity, a.Subject)
	}
	return nil
}
