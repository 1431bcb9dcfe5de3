//go:build property
// +build property

package property

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/hiveboard/hiveboard/pkg/models"
)

const MinTestIterations = 100

func TestClampInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = MinTestIterations
	properties := gopter.NewProperties(parameters)

	properties.Property("Clamp01 always lands in [0,1]", prop.ForAll(
		func(v float64) bool {
			clamped := models.Clamp01(v)
			return clamped >= 0 && clamped <= 1
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("Clamp01 is idempotent", prop.ForAll(
		func(v float64) bool {
			once := models.Clamp01(v)
			return models.Clamp01(once) == once
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("clamped capabilities stay in bounds", prop.ForAll(
		func(prof, lr float64) bool {
			c := models.Capability{Name: "x", Proficiency: prof, LearningRate: lr}.Clamped()
			return c.Proficiency >= 0 && c.Proficiency <= 1 &&
				c.LearningRate >= 0 && c.LearningRate <= 1
		},
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t)
}

func TestEnergyInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = MinTestIterations
	properties := gopter.NewProperties(parameters)

	properties.Property("SetEnergy clamps to [0, MaxEnergy]", prop.ForAll(
		func(energy float64) bool {
			a := models.NewAgent("a", models.WorkerAgentType, nil)
			a.SetEnergy(energy)
			return a.Energy >= 0 && a.Energy <= models.MaxEnergy
		},
		gen.Float64Range(-1e4, 1e4),
	))

	properties.Property("experience count never decreases", prop.ForAll(
		func(n int) bool {
			a := models.NewAgent("a", models.LearnerAgentType, nil)
			prev := a.ExperienceCount
			for i := 0; i < n%50; i++ {
				a.RecordExperience()
				if a.ExperienceCount < prev {
					return false
				}
				prev = a.ExperienceCount
			}
			return true
		},
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}

func TestPriorityBucketTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = MinTestIterations
	properties := gopter.NewProperties(parameters)

	known := map[string]bool{"low": true, "medium": true, "high": true, "critical": true}

	properties.Property("every priority maps to a known bucket", prop.ForAll(
		func(p int) bool {
			return known[models.TaskPriority(p).Bucket()]
		},
		gen.IntRange(-1000, 1000),
	))

	properties.Property("bucket ordering follows priority ordering", prop.ForAll(
		func(a, b int) bool {
			rank := map[string]int{"low": 0, "medium": 1, "high": 2, "critical": 3}
			if a > b {
				a, b = b, a
			}
			return rank[models.TaskPriority(a).Bucket()] <= rank[models.TaskPriority(b).Bucket()]
		},
		gen.IntRange(-100, 100),
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t)
}
