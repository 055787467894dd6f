package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

const dateLayout = "2006-01-02"

func (c *cli) printTaskTable(tasks []*domain.TaskDetail) {
	if len(tasks) == 0 {
		fmt.Fprintln(c.out, "No tasks found.")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE\tDUE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, t.Status, t.Priority, userLabel(t.AssignedTo), t.DueDate.Format(dateLayout))
	}
	_ = tw.Flush()
}

func (c *cli) printTask(t *domain.TaskDetail) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	fmt.Fprintf(tw, "Description:\t%s\n", t.Description)
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Due:\t%s\n", t.DueDate.Format(dateLayout))
	fmt.Fprintf(tw, "Assigned to:\t%s\n", userLabel(t.AssignedTo))
	fmt.Fprintf(tw, "Created by:\t%s\n", userLabel(t.CreatedBy))
	fmt.Fprintf(tw, "Created:\t%s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	_ = tw.Flush()
}

func (c *cli) printStats(s *domain.TaskStats) {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total:\t%d\n", s.Total)
	fmt.Fprintf(tw, "Pending:\t%d\n", s.Pending)
	fmt.Fprintf(tw, "In progress:\t%d\n", s.InProgress)
	fmt.Fprintf(tw, "Completed:\t%d\n", s.Completed)
	fmt.Fprintf(tw, "Urgent / High / Medium / Low:\t%d / %d / %d / %d\n", s.Urgent, s.High, s.Medium, s.Low)
	_ = tw.Flush()
}

// userLabel prefers the username; deleted users only have an id.
func userLabel(u domain.UserRef) string {
	if u.Username != "" {
		return u.Username
	}
	return u.ID.String()
}
