// =============================================================================
// Campaign Insights - Main Entry Point
// =============================================================================
//
// USAGE:
//   campaigns process       - Parse every export in the input directory
//   campaigns inspect FILE  - Show how one export would be parsed
//   campaigns validate      - Check configuration without processing
//   campaigns version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : parsing, mapping, aggregation, reports and configuration
//   - pkg/       : file discovery, archival and naming utilities
//   - profiles/  : optional per-source parsing overrides (YAML)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/campaign-insights/cmd"
)

func main() {
	cmd.Execute()
}
