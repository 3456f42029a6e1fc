package tui

import (
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/model"
)

// buildPicker lists open tasks ordered by client, project and task name.
// The returned ids line up with the table rows.
func buildPicker(tasks []model.Task, idx *analytics.Index) (table.Model, []string) {
	type row struct {
		id                    string
		task, project, client string
	}
	rows := make([]row, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed || t.Archived {
			continue
		}
		task, project, client := idx.Names(t.ID)
		rows = append(rows, row{id: t.ID, task: task, project: project, client: client})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].client != rows[j].client {
			return rows[i].client < rows[j].client
		}
		if rows[i].project != rows[j].project {
			return rows[i].project < rows[j].project
		}
		return rows[i].task < rows[j].task
	})

	ids := make([]string, len(rows))
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		ids[i] = r.id
		tableRows[i] = table.Row{r.client, r.project, r.task}
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Client", Width: 18},
			{Title: "Project", Width: 18},
			{Title: "Task", Width: 28},
		}),
		table.WithRows(tableRows),
		table.WithHeight(maxInt(3, minInt(len(rows)+1, 12))),
		table.WithStyles(pickerStyles()),
	)
	return t, ids
}

func pickerStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(true)
	return styles
}
