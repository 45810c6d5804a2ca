// Package render выводит задачи и пользователей в виде таблиц для
// консоли, Telegram и экспорта.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"taskboard/internal/models"
)

// Unassigned - подпись для задачи без исполнителя.
const Unassigned = "unassigned"

type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: неизвестный формат %q", models.ErrInvalidArgument, s)
}

type Options struct {
	Format Format
	// Colors включает ANSI-цвета; учитывается только для FormatTable.
	Colors bool
}

// AssigneeName находит имя исполнителя по id. Если ссылки нет или
// пользователь не найден, возвращает Unassigned.
func AssigneeName(users []models.User, assignedTo *string) string {
	if assignedTo == nil {
		return Unassigned
	}
	for _, u := range users {
		if u.ID == *assignedTo {
			return u.Name
		}
	}
	return Unassigned
}

func Tasks(w io.Writer, tasks []models.Task, users []models.User, opts Options) error {
	colored := opts.Colors && opts.Format != FormatMarkdown && opts.Format != FormatCSV

	t := newWriter(w)
	t.AppendHeader(table.Row{"ID", "Title", "Priority", "Due", "Done", "Assigned To"})
	for _, task := range tasks {
		title := task.Title
		priority := string(task.Priority)
		if colored {
			if task.IsCompleted {
				title = text.CrossedOut.Sprint(title)
			}
			priority = priorityColor(task.Priority).Sprint(priority)
		}

		done := ""
		if task.IsCompleted {
			done = "x"
		}

		t.AppendRow(table.Row{task.ID, title, priority, task.DueDate, done, AssigneeName(users, task.AssignedTo)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d task(s)", len(tasks))})

	return renderAs(t, opts.Format)
}

func Users(w io.Writer, users []models.User, opts Options) error {
	t := newWriter(w)
	t.AppendHeader(table.Row{"ID", "Name"})
	for _, u := range users {
		t.AppendRow(table.Row{u.ID, u.Name})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d user(s)", len(users))})

	return renderAs(t, opts.Format)
}

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderAs(t table.Writer, f Format) error {
	switch f {
	case "", FormatTable:
		t.Render()
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatCSV:
		t.RenderCSV()
	default:
		return fmt.Errorf("%w: неизвестный формат %q", models.ErrInvalidArgument, f)
	}
	return nil
}

// Цвета как на карточках задач: low - зелёный, medium - жёлтый, high - красный.
func priorityColor(p models.Priority) text.Colors {
	switch p {
	case models.PriorityLow:
		return text.Colors{text.FgGreen}
	case models.PriorityMedium:
		return text.Colors{text.FgYellow}
	case models.PriorityHigh:
		return text.Colors{text.FgRed}
	}
	return text.Colors{}
}
