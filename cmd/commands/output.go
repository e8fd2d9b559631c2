package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dohr-michael/pal/internal/memory"
	"github.com/dohr-michael/pal/internal/models"
	"github.com/dohr-michael/pal/internal/storage"
	"github.com/dohr-michael/pal/internal/tasks"
)

const timeFormat = "2006-01-02 15:04:05"

func writeTaskTable(w io.Writer, list []tasks.Task) error {
	if len(list) == 0 {
		fmt.Fprintln(w, tasks.NoTasks)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCREATED\tCOMPLETED\tNAME")
	for _, t := range list {
		status := "pending"
		completed := "-"
		if t.Completed {
			status = "done"
		}
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Local().Format(timeFormat)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.ID,
			status,
			t.CreatedAt.Local().Format(timeFormat),
			completed,
			t.Name,
		)
	}
	return tw.Flush()
}

func writeHistory(w io.Writer, msgs []memory.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No conversation history.")
		return
	}
	for _, m := range msgs {
		fmt.Fprintf(w, "[%s] %s: %s\n", m.CreatedAt.Local().Format(timeFormat), m.Role, m.Content)
	}
}

func writeStats(w io.Writer, stats storage.Stats, usage []storage.Usage, info models.Info) error {
	model := info.Model
	if model == "" {
		model = "Unknown"
	}
	if !info.Configured {
		model += " (not configured)"
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Model:\t%s\n", model)
	fmt.Fprintf(tw, "Tasks:\t%d (%d completed, %d pending)\n", stats.TotalTasks, stats.CompletedTasks, stats.PendingTasks)
	fmt.Fprintf(tw, "Messages:\t%d\n", stats.ConversationMessages)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(usage) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tCALLS\tTOKENS IN\tTOKENS OUT")
	for _, u := range usage {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", u.Model, u.Calls, u.TokensInput, u.TokensOutput)
	}
	return tw.Flush()
}
