package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yukikurage/project-board-api/internal/client"
	"github.com/yukikurage/project-board-api/internal/dto"
	"github.com/yukikurage/project-board-api/internal/models"
	"github.com/yukikurage/project-board-api/internal/utils"
)

type app struct {
	api    *client.Client
	tokens tokenStore
	out    io.Writer
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.api.Logout()
		if err := a.tokens.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Logged out")
		return nil
	case "me":
		return a.me(ctx)
	case "profile":
		return a.profile(ctx, args)
	case "password":
		return a.password(ctx, args)
	case "stats":
		return a.stats(ctx)
	case "projects":
		return a.projects(ctx, args)
	case "project":
		return a.project(ctx, args)
	case "tasks":
		return a.tasks(ctx, args)
	case "task":
		return a.task(ctx, args)
	case "board":
		return a.board(ctx, args)
	case "move":
		return a.move(ctx, args)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	role := fs.String("role", "", "admin or member")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := a.api.Register(ctx, dto.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     models.UserRole(*role),
	})
	if err != nil {
		return err
	}
	if err := a.tokens.Save(session.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s <%s>\n", session.User.Name, session.User.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.tokens.Save(session.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", session.User.Name)
	return nil
}

func (a *app) me(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d\t%s <%s>\t%s\n", user.ID, user.Name, user.Email, user.Role)
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	fs := newFlags("profile")
	name := fs.String("name", "", "new display name")
	email := fs.String("email", "", "new email address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	session, err := a.api.UpdateProfile(ctx, dto.UpdateProfileRequest{Name: *name, Email: *email})
	if err != nil {
		return err
	}
	if err := a.tokens.Save(session.Token); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s <%s>\n", session.User.Name, session.User.Email)
	return nil
}

func (a *app) password(ctx context.Context, args []string) error {
	fs := newFlags("password")
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.api.UpdatePassword(ctx, *current, *next); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated")
	return nil
}

func (a *app) stats(ctx context.Context) error {
	stats, err := a.api.Stats(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total\t%d\n", stats.TotalProjects)
	fmt.Fprintf(w, "Active\t%d\n", stats.ActiveProjects)
	fmt.Fprintf(w, "Completed\t%d\n", stats.CompletedProjects)
	if err := w.Flush(); err != nil {
		return err
	}
	if len(stats.RecentProjects) > 0 {
		fmt.Fprintln(a.out, "\nRecent:")
		return printProjects(a.out, stats.RecentProjects)
	}
	return nil
}

func (a *app) projects(ctx context.Context, args []string) error {
	fs := newFlags("projects")
	keyword := fs.String("keyword", "", "title filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	projects, err := a.api.ListProjects(ctx, *keyword)
	if err != nil {
		return err
	}
	return printProjects(a.out, projects)
}

func (a *app) project(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("project: expected create, update or delete")
	}

	switch args[0] {
	case "create":
		fs := newFlags("project create")
		title := fs.String("title", "", "project title")
		description := fs.String("description", "", "project description")
		due := fs.String("due", "", "due date")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		dueDate, err := parseDue(*due)
		if err != nil {
			return err
		}

		project, err := a.api.CreateProject(ctx, dto.CreateProjectRequest{
			Title:       *title,
			Description: *description,
			DueDate:     dueDate,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created project %d %q\n", project.ID, project.Title)
		return nil
	case "update":
		return a.updateProject(ctx, args[1:])
	case "delete":
		if len(args) < 2 {
			return errors.New("project delete: missing id")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := a.api.DeleteProject(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted project %d\n", id)
		return nil
	default:
		return fmt.Errorf("project: unknown subcommand %q", args[0])
	}
}

func (a *app) updateProject(ctx context.Context, args []string) error {
	id, rest, err := leadingID("project update", args)
	if err != nil {
		return err
	}

	fs := newFlags("project update")
	title := fs.String("title", "", "project title")
	description := fs.String("description", "", "project description")
	status := fs.String("status", "", "Active or Completed")
	due := fs.String("due", "", "due date, empty to clear")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	set := setFlags(fs)

	var req dto.UpdateProjectRequest
	if set["title"] {
		req.Title = title
	}
	if set["description"] {
		req.Description = description
	}
	if set["status"] {
		s := models.ProjectStatus(*status)
		req.Status = &s
	}
	if set["due"] {
		if req.DueDate, err = patchDue(*due); err != nil {
			return err
		}
	}

	project, err := a.api.UpdateProject(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated project %d %q (%s)\n", project.ID, project.Title, project.Status)
	return nil
}

func (a *app) tasks(ctx context.Context, args []string) error {
	fs := newFlags("tasks")
	projectID := fs.Uint64("project", 0, "project id")
	keyword := fs.String("keyword", "", "title or description filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tasks, err := a.api.ListTasks(ctx, *projectID, *keyword)
	if err != nil {
		return err
	}
	return printTasks(a.out, tasks)
}

func (a *app) task(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("task: expected create, update or delete")
	}
	switch args[0] {
	case "create":
		return a.createTask(ctx, args[1:])
	case "update":
		return a.updateTask(ctx, args[1:])
	case "delete":
		id, _, err := leadingID("task delete", args[1:])
		if err != nil {
			return err
		}
		if err := a.api.DeleteTask(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted task %d\n", id)
		return nil
	default:
		return fmt.Errorf("task: unknown subcommand %q", args[0])
	}
}

func (a *app) createTask(ctx context.Context, args []string) error {
	fs := newFlags("task create")
	projectID := fs.Uint64("project", 0, "project id")
	title := fs.String("title", "", "task title")
	description := fs.String("description", "", "task description")
	priority := fs.String("priority", "", "Low, Medium or High")
	due := fs.String("due", "", "due date")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dueDate, err := parseDue(*due)
	if err != nil {
		return err
	}

	task, err := a.api.CreateTask(ctx, dto.CreateTaskRequest{
		Title:       *title,
		Description: *description,
		Priority:    models.TaskPriority(*priority),
		DueDate:     dueDate,
		ProjectID:   *projectID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created task %d %q\n", task.ID, task.Title)
	return nil
}

func (a *app) updateTask(ctx context.Context, args []string) error {
	id, rest, err := leadingID("task update", args)
	if err != nil {
		return err
	}

	fs := newFlags("task update")
	title := fs.String("title", "", "task title")
	description := fs.String("description", "", "task description")
	status := fs.String("status", "", "To Do, In Progress or Done")
	priority := fs.String("priority", "", "Low, Medium or High")
	due := fs.String("due", "", "due date, empty to clear")
	assignee := fs.Uint64("assignee", 0, "assigned user id")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	set := setFlags(fs)

	var req dto.UpdateTaskRequest
	if set["title"] {
		req.Title = title
	}
	if set["description"] {
		req.Description = description
	}
	if set["status"] {
		s := models.TaskStatus(*status)
		req.Status = &s
	}
	if set["priority"] {
		p := models.TaskPriority(*priority)
		req.Priority = &p
	}
	if set["due"] {
		if req.DueDate, err = patchDue(*due); err != nil {
			return err
		}
	}
	if set["assignee"] {
		req.AssignedTo = assignee
	}

	task, err := a.api.UpdateTask(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated task %d %q (%s, %s)\n", task.ID, task.Title, task.Status, task.Priority)
	return nil
}

func (a *app) board(ctx context.Context, args []string) error {
	fs := newFlags("board")
	projectID := fs.Uint64("project", 0, "project id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	board := client.NewBoard(a.api, *projectID)
	if err := board.Load(ctx); err != nil {
		return err
	}
	return printBoard(a.out, board)
}

func (a *app) move(ctx context.Context, args []string) error {
	fs := newFlags("move")
	projectID := fs.Uint64("project", 0, "project id")
	taskID := fs.Uint64("task", 0, "task id")
	status := fs.String("status", "", "To Do, In Progress or Done")
	if err := fs.Parse(args); err != nil {
		return err
	}

	board := client.NewBoard(a.api, *projectID)
	if err := board.Load(ctx); err != nil {
		return err
	}
	if err := board.Move(ctx, *taskID, models.TaskStatus(*status)); err != nil {
		return err
	}
	return printBoard(a.out, board)
}

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// leadingID splits "ID [flags]" arguments.
func leadingID(cmd string, args []string) (uint64, []string, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("%s: missing id", cmd)
	}
	id, err := parseID(args[0])
	if err != nil {
		return 0, nil, err
	}
	return id, args[1:], nil
}

// setFlags reports which flags were given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

// patchDue turns an explicit empty value into a clear.
func patchDue(raw string) (dto.DateField, error) {
	if raw == "" {
		return dto.ClearDate(), nil
	}
	return parseDue(raw)
}

func parseDue(raw string) (dto.DateField, error) {
	if raw == "" {
		return dto.DateField{}, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return dto.DateField{}, err
	}
	return dto.NewDate(t), nil
}

func formatDue(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(utils.DateLayout)
}

func printProjects(out io.Writer, projects []dto.ProjectDTO) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tDUE")
	for _, p := range projects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Title, p.Status, formatDue(p.DueDate))
	}
	return w.Flush()
}

func printTasks(out io.Writer, tasks []dto.TaskDTO) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tASSIGNEE")
	for _, t := range tasks {
		assignee := "-"
		if t.Assignee != nil {
			assignee = t.Assignee.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, formatDue(t.DueDate), assignee)
	}
	return w.Flush()
}

func printBoard(out io.Writer, board *client.Board) error {
	if p := board.Project(); p != nil {
		fmt.Fprintf(out, "%s\n%s\n", p.Title, strings.Repeat("=", len(p.Title)))
	}
	for _, col := range board.Columns() {
		fmt.Fprintf(out, "\n%s (%d)\n", col.Status, len(col.Tasks))
		for _, t := range col.Tasks {
			fmt.Fprintf(out, "  #%d %s [%s]\n", t.ID, t.Title, t.Priority)
		}
	}
	return nil
}
