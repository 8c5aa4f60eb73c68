package dashboard

import (
	"strconv"

	"github.com/multiplica-sam/sam/internal/ui/types"
)

// values shown in the hero section when the api does not provide them
const (
	FallbackLocalities = 87
	FallbackStudents   = 478
	FallbackExams      = 87
	LessonsTotal       = 235
)

// StatsDisplay holds the text of the hero section counters, keyed in JSON by their element ids
type StatsDisplay struct {
	Localities string `json:"stat-turmas"`
	Enrolled   string `json:"stat-matriculados"`
	Lessons    string `json:"stat-aulas"`
}

// NewStatsDisplay formats the counters, using the fallback literal for any counter that is missing or zero.
// nil stats yields the fallback values.
func NewStatsDisplay(stats *types.GeneralStats) StatsDisplay {
	if stats == nil {
		stats = &types.GeneralStats{}
	}
	return StatsDisplay{
		Localities: strconv.Itoa(orFallback(stats.TotalLocalities, FallbackLocalities)),
		Enrolled:   strconv.Itoa(orFallback(stats.TotalStudents, FallbackStudents)),
		Lessons:    strconv.Itoa(orFallback(stats.TotalExams, FallbackExams)) + "/" + strconv.Itoa(LessonsTotal),
	}
}

func orFallback(v *int, fallback int) int {
	if v == nil || *v == 0 {
		return fallback
	}
	return *v
}
