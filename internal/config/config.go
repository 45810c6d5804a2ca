package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"taskboard/internal/models"
)

const (
	EnvConfigPath    = "TASKBOARD_CONFIG"
	EnvTelegramToken = "TASKBOARD_TELEGRAM_TOKEN"
)

type Config struct {
	ListenAddr string   `yaml:"listen_addr"`
	LogLevel   string   `yaml:"log_level"`
	ExportPath string   `yaml:"export_path"`
	SeedFile   string   `yaml:"seed_file"`
	Telegram   Telegram `yaml:"telegram"`
}

type Telegram struct {
	Token string `yaml:"token"`
	Debug bool   `yaml:"debug"`
}

func Default() Config {
	return Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		ExportPath: filepath.Join("data", "taskboard.db"),
	}
}

// Path возвращает путь к конфигу: $TASKBOARD_CONFIG, иначе
// <user config dir>/taskboard/config.yaml.
func Path() (string, error) {
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return expandHome(custom), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return "", fmt.Errorf("не удалось определить домашний каталог: %w", homeErr)
		}
		return filepath.Join(home, ".taskboard", "config.yaml"), nil
	}
	return filepath.Join(dir, "taskboard", "config.yaml"), nil
}

// Load читает конфиг. Отсутствующий файл - не ошибка, берутся значения
// по умолчанию. Пустой path означает Path().
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(expandHome(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("ошибка чтения конфига %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("ошибка разбора конфига %s: %w", path, err)
		}
	}

	if token := os.Getenv(EnvTelegramToken); token != "" {
		cfg.Telegram.Token = token
	}
	cfg.ExportPath = expandHome(cfg.ExportPath)
	cfg.SeedFile = expandHome(cfg.SeedFile)

	return cfg, nil
}

// LoadSeed читает начальный список задач из YAML. Задачи без id
// получают id от newID; неизвестный приоритет - ошибка.
func LoadSeed(path string, newID func() string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения seed-файла: %w", err)
	}

	var tasks []models.Task
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("ошибка разбора seed-файла %s: %w", path, err)
	}

	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = newID()
		}
		if seen[tasks[i].ID] {
			return nil, fmt.Errorf("%w: повторяющийся id %q в %s", models.ErrInvalidArgument, tasks[i].ID, path)
		}
		seen[tasks[i].ID] = true

		p, err := models.ParsePriority(string(tasks[i].Priority))
		if err != nil {
			return nil, fmt.Errorf("задача %q: %w", tasks[i].ID, err)
		}
		tasks[i].Priority = p
		tasks[i].AssignedTo = models.NormalizeAssignee(tasks[i].AssignedTo)
	}
	return tasks, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
