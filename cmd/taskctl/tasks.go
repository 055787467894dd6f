package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/client"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

var taskCommands = []string{"list", "show", "create", "update", "status", "priority", "delete", "stats", "by-priority"}

func (c *cli) tasks(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: tasks <%s>", errUsage, strings.Join(taskCommands, "|"))
	}
	if err := c.requireSession(); err != nil {
		return err
	}

	var err error
	switch sub, rest := args[0], args[1:]; sub {
	case "list":
		err = c.listTasks(ctx, rest)
	case "show":
		err = c.showTask(ctx, rest)
	case "create":
		err = c.createTask(ctx, rest)
	case "update":
		err = c.updateTask(ctx, rest)
	case "status":
		err = c.setTaskStatus(ctx, rest)
	case "priority":
		err = c.setTaskPriority(ctx, rest)
	case "delete":
		err = c.deleteTask(ctx, rest)
	case "stats":
		err = c.taskStats(ctx)
	case "by-priority":
		err = c.tasksByPriority(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown tasks command %q", errUsage, sub)
	}
	return c.authFailed(err)
}

func (c *cli) listTasks(ctx context.Context, args []string) error {
	fs := c.flagSet("tasks list")
	page := fs.Int("page", 1, "page number")
	status := fs.String("status", "", "filter by status")
	priority := fs.String("priority", "", "filter by priority")
	search := fs.String("search", "", "only show tasks on this page whose title or description contains text")
	sortKey := fs.String("sort", string(client.SortCreatedAt), "sort by createdAt, title, priority, assignedTo or dueDate")
	order := fs.String("order", "", "asc or desc (default: desc for createdAt, asc otherwise)")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	q := client.PageQuery{Page: *page}
	if *status != "" {
		s, err := domain.ParseTaskStatus(*status)
		if err != nil {
			return err
		}
		q.Status = s
	}
	if *priority != "" {
		p, err := domain.ParseTaskPriority(*priority)
		if err != nil {
			return err
		}
		q.Priority = p
	}
	key, ok := client.ParseSortKey(*sortKey)
	if !ok {
		return fmt.Errorf("%w: unknown sort key %q", errUsage, *sortKey)
	}
	view := client.ViewQuery{Search: *search, SortKey: key}
	switch *order {
	case "":
		view.Desc = key == client.SortCreatedAt
	case "asc":
	case "desc":
		view.Desc = true
	default:
		return fmt.Errorf("%w: order must be asc or desc", errUsage)
	}

	d := client.NewDashboard(c.api)
	if err := d.Load(ctx, q); err != nil {
		return err
	}
	d.SetView(view)

	c.printTaskTable(d.Visible())
	p := d.Pagination()
	fmt.Fprintf(c.out, "\nPage %d of %d (%d tasks)", p.Current, max(p.Pages, 1), p.Total)
	if view.Search != "" {
		fmt.Fprintf(c.out, ", %d shown matching %q", len(d.Visible()), view.Search)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *cli) showTask(ctx context.Context, args []string) error {
	id, err := singleID(args, "tasks show <id>")
	if err != nil {
		return err
	}
	task, err := c.api.GetTask(ctx, id)
	if err != nil {
		return err
	}
	c.printTask(task)
	return nil
}

func (c *cli) createTask(ctx context.Context, args []string) error {
	fs := c.flagSet("tasks create")
	title := fs.String("title", "", "title (required)")
	description := fs.String("description", "", "description (required)")
	due := fs.String("due", "", "due date, YYYY-MM-DD or RFC 3339 (required)")
	priority := fs.String("priority", "", "low, medium, high or urgent (default medium)")
	assign := fs.String("assign", "", "assignee user id (default: yourself)")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	req := api.CreateTaskRequest{
		Title:       *title,
		Description: *description,
		Priority:    domain.TaskPriority(*priority),
		AssignedTo:  *assign,
	}
	if req.AssignedTo == "" {
		req.AssignedTo = c.session.User.ID.String()
	}
	if *due == "" {
		return fmt.Errorf("%w: -due is required", errUsage)
	}
	dueAt, err := api.ParseDate(*due)
	if err != nil {
		return err
	}
	req.DueDate = &api.Date{Time: dueAt}

	task, err := c.api.CreateTask(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Task created.")
	c.printTask(task)
	return nil
}

func (c *cli) updateTask(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: tasks update <id> [flags]", errUsage)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: invalid task id %q", errUsage, args[0])
	}

	fs := c.flagSet("tasks update")
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	due := fs.String("due", "", "new due date")
	status := fs.String("status", "", "new status")
	priority := fs.String("priority", "", "new priority")
	assign := fs.String("assign", "", "new assignee user id")
	if err := c.parse(fs, args[1:]); err != nil {
		return err
	}

	var req api.UpdateTaskRequest
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			req.Title = title
		case "description":
			req.Description = description
		case "due":
			t, err := api.ParseDate(*due)
			if err != nil {
				parseErr = err
				return
			}
			req.DueDate = &api.Date{Time: t}
		case "status":
			s := domain.TaskStatus(*status)
			req.Status = &s
		case "priority":
			p := domain.TaskPriority(*priority)
			req.Priority = &p
		case "assign":
			req.AssignedTo = assign
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if fs.NFlag() == 0 {
		return fmt.Errorf("%w: nothing to update", errUsage)
	}

	task, err := c.api.UpdateTask(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Task updated.")
	c.printTask(task)
	return nil
}

func (c *cli) setTaskStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: tasks status <id> <pending|in-progress|completed>", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	status, err := domain.ParseTaskStatus(args[1])
	if err != nil {
		return err
	}
	task, err := c.api.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Task %q is now %s.\n", task.Title, task.Status)
	return nil
}

func (c *cli) setTaskPriority(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: tasks priority <id> <low|medium|high|urgent>", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	priority, err := domain.ParseTaskPriority(args[1])
	if err != nil {
		return err
	}
	task, err := c.api.UpdatePriority(ctx, id, priority)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Task %q is now %s priority.\n", task.Title, task.Priority)
	return nil
}

func (c *cli) deleteTask(ctx context.Context, args []string) error {
	id, err := singleID(args, "tasks delete <id>")
	if err != nil {
		return err
	}
	msg, err := c.api.DeleteTask(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, msg)
	return nil
}

func (c *cli) taskStats(ctx context.Context) error {
	stats, err := c.api.Stats(ctx)
	if err != nil {
		return err
	}
	c.printStats(stats)
	return nil
}

func (c *cli) tasksByPriority(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: tasks by-priority <low|medium|high|urgent>", errUsage)
	}
	priority, err := domain.ParseTaskPriority(args[0])
	if err != nil {
		return err
	}
	res, err := c.api.TasksByPriority(ctx, priority)
	if err != nil {
		return err
	}
	c.printTaskTable(res.Tasks)
	fmt.Fprintf(c.out, "\n%d %s priority tasks\n", len(res.Tasks), res.Priority)
	return nil
}

func singleID(args []string, usage string) (uuid.UUID, error) {
	if len(args) != 1 {
		return uuid.Nil, fmt.Errorf("%w: %s", errUsage, usage)
	}
	return parseID(args[0])
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", errUsage, raw)
	}
	return id, nil
}
