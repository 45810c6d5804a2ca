package manager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	addTaskCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_tasks_added_total",
			Help: "Total number of AddTask operations",
		},
	)

	taskTitleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskboard_task_title_length_bytes",
			Help:    "Length distribution of task titles",
			Buckets: []float64{10, 50, 100, 500},
		},
	)

	// op: delete|toggle|update|filter, status: applied|noop|error
	taskOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_task_operations_total",
			Help: "Task mutations by operation and outcome",
		},
		[]string{"op", "status"},
	)

	removeUserCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_users_removed_total",
			Help: "Total number of RemoveUser operations",
		},
		[]string{"status"},
	)

	assigneesCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskboard_assignees_cleared_total",
			Help: "Task assignments cleared because the user was removed",
		},
	)
)

func outcome(applied bool) string {
	if applied {
		return "applied"
	}
	return "noop"
}
