package main

import (
	"fmt"

	"github.com/hupe1980/incidentmesh"
	"github.com/hupe1980/incidentmesh/incident"
	"github.com/spf13/cobra"
)

var (
	createTitle       string
	createDescription string
	createSeverity    string
	createSystems     []string
	createTags        []string
	createIdemKey     string
	createAnalyze     bool
	createResolve     bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an incident and optionally run the response workflow",
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createTitle, "title", "t", "", "incident title (required)")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "incident description")
	createCmd.Flags().StringVarP(&createSeverity, "severity", "s", incident.SeverityMedium, "severity: low, medium, high or critical")
	createCmd.Flags().StringSliceVar(&createSystems, "system", nil, "affected system (repeatable)")
	createCmd.Flags().StringSliceVar(&createTags, "tag", nil, "incident tag (repeatable)")
	createCmd.Flags().StringVar(&createIdemKey, "idempotency-key", "", "make this create safe to retry")
	createCmd.Flags().BoolVar(&createAnalyze, "analyze", false, "run the diagnostic agent after creation")
	createCmd.Flags().BoolVar(&createResolve, "resolve", false, "run the resolution agent after analysis (implies --analyze)")

	_ = createCmd.MarkFlagRequired("title")
}

func runCreate(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Cleanup()

	id, err := sys.CreateIncident(incident.Params{
		Title:           createTitle,
		Description:     createDescription,
		Severity:        createSeverity,
		AffectedSystems: createSystems,
		Tags:            createTags,
	}, func(o *incidentmesh.CreateOptions) {
		o.IdempotencyKey = createIdemKey
	})
	if err != nil {
		return err
	}
	fmt.Printf("created incident %s\n", id)

	if createAnalyze || createResolve {
		report, err := sys.AnalyzeIncident(id)
		if err != nil {
			return err
		}
		fmt.Println("diagnostic report:")
		if err := printJSON(report); err != nil {
			return err
		}
	}

	if createResolve {
		status, err := sys.ImplementResolution(id)
		if err != nil {
			return err
		}
		fmt.Println("resolution status:")
		if err := printJSON(status); err != nil {
			return err
		}
	}

	doc, err := sys.GetIncident(id)
	if err != nil {
		return err
	}
	return printJSON(doc)
}
