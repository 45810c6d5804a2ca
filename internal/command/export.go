package command

import (
	"context"
	"fmt"

	"taskboard/internal/logger"
	"taskboard/internal/manager"
	"taskboard/internal/storage"
)

// ExportFunc сохраняет снимок состояния и возвращает путь к файлу.
// Пустой path означает путь по умолчанию.
type ExportFunc func(ctx context.Context, path string) (string, error)

// WithExporter включает команду export. Без экспортёра она отвечает ErrUsage.
func (d *Dispatcher) WithExporter(f ExportFunc) *Dispatcher {
	d.export = f
	return d
}

func (d *Dispatcher) exportSnapshot(ctx context.Context, args []string) (string, error) {
	if d.export == nil {
		return "", fmt.Errorf("%w: export is not available here", ErrUsage)
	}
	if len(args) > 1 {
		return "", fmt.Errorf("%w: export [path]", ErrUsage)
	}

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	written, err := d.export(ctx, path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Snapshot exported to %s", written), nil
}

// SnapshotExporter пишет снимок ws в файл SQLite. Если allowPath == false,
// путь из команды не принимается: пишем только в defaultPath.
func SnapshotExporter(ws *manager.Workspace, defaultPath string, allowPath bool) ExportFunc {
	return func(ctx context.Context, path string) (string, error) {
		switch {
		case path == "":
			path = defaultPath
		case !allowPath:
			return "", fmt.Errorf("%w: export path is set by config, use plain export", ErrUsage)
		}

		st, err := storage.NewSQLiteStorage(ctx, path)
		if err != nil {
			return "", err
		}
		defer st.Close()

		snap := ws.Snapshot()
		if err := st.SaveSnapshot(ctx, snap); err != nil {
			return "", err
		}
		logger.Info(ctx, "Снимок экспортирован", "path", path, "tasks", len(snap.Tasks), "users", len(snap.Users))
		return path, nil
	}
}
