package manager

import "taskboard/internal/models"

// DefaultSeedTasks - начальный список задач свежего процесса.
func DefaultSeedTasks() []models.Task {
	return []models.Task{
		{
			ID:          "sdfkgfosruhfgg",
			Title:       "Initialize frontend",
			Description: "Create home page, and routing",
			DueDate:     "2025-11",
			Priority:    models.PriorityHigh,
			IsCompleted: false,
		},
		{
			ID:          "sdfkgsfssffosruhfgg",
			Title:       "Initialize frontend",
			Description: "Create home page, and routing",
			DueDate:     "2025-11",
			Priority:    models.PriorityMedium,
			IsCompleted: true,
		},
		{
			ID:          "sdfkgsfssffosrsdsduhfgg",
			Title:       "Initialize frontend",
			Description: "Create home page, and routing",
			DueDate:     "2025-11",
			Priority:    models.PriorityLow,
			IsCompleted: false,
		},
	}
}
