package incident

// simulatedIncidents are seed records for demos and local testing.
var simulatedIncidents = []Params{
	{
		Title:           "Database connection pool exhausted",
		Description:     "Application servers report connection timeouts against the primary database.",
		Severity:        SeverityHigh,
		AffectedSystems: []string{"db-primary", "app-server-pool"},
		Tags:            []string{"database", "connectivity"},
	},
	{
		Title:           "Elevated API error rate",
		Description:     "5xx responses from the public API gateway exceed the 1% alert threshold.",
		Severity:        SeverityMedium,
		AffectedSystems: []string{"api-gateway"},
		Tags:            []string{"api", "errors"},
	},
	{
		Title:           "Disk usage critical on log aggregator",
		Description:     "Log aggregation node has less than 5% free disk space.",
		Severity:        SeverityCritical,
		AffectedSystems: []string{"log-aggregator-01"},
		Tags:            []string{"storage", "logging"},
	},
}

// Preload seeds the repository with up to count simulated incidents and
// returns the created ids.
func Preload(repo Repository, count int) []string {
	if count <= 0 || count > len(simulatedIncidents) {
		count = len(simulatedIncidents)
	}
	ids := make([]string, 0, count)
	for _, p := range simulatedIncidents[:count] {
		id, err := repo.Create(p)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
