package dash

import (
	"fmt"

	"github.com/hiveboard/hiveboard/pkg/models"
)

// Usage classes chosen from fixed cut points
type usageClass int

const (
	usageOK usageClass = iota
	usageWarning
	usageCritical
)

// Percent formats a ratio in [0,1] as a percentage with one decimal,
// e.g. 0.847 -> "84.7%"
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// SuccessRate returns the completed/(completed+failed) ratio, or 0 when
// nothing has finished yet
func SuccessRate(completed, failed int) float64 {
	total := completed + failed
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total)
}

// UsageClassOf buckets a usage percentage: <50 ok, <80 warning, else critical
func UsageClassOf(usagePercent float64) usageClass {
	switch {
	case usagePercent < 50:
		return usageOK
	case usagePercent < 80:
		return usageWarning
	default:
		return usageCritical
	}
}

// Bytes formats a byte count in human units with one decimal
func Bytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// NeuralCounts partitions agents into basic and advanced neural buckets.
// The buckets are disjoint and cover every agent: anything that is not a
// known advanced backend counts as basic.
type NeuralCounts struct {
	Basic    int
	Advanced int
}

// CountNeural derives the basic/advanced split for the neural widget
func CountNeural(agents []models.Agent) NeuralCounts {
	var c NeuralCounts
	for _, a := range agents {
		if a.NeuralType.Advanced() {
			c.Advanced++
		} else {
			c.Basic++
		}
	}
	return c
}

// StateCounts tallies agents per lifecycle state for the badges row
func StateCounts(agents []models.Agent) map[models.AgentState]int {
	counts := make(map[models.AgentState]int)
	for _, a := range agents {
		counts[a.State]++
	}
	return counts
}
