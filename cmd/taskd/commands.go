package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hochfrequenz/task-engine/internal/config"
	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/lifecycle"
	"github.com/hochfrequenz/task-engine/internal/notify"
	"github.com/hochfrequenz/task-engine/internal/planner"
	"github.com/hochfrequenz/task-engine/internal/recur"
	"github.com/hochfrequenz/task-engine/internal/store"
	"github.com/hochfrequenz/task-engine/internal/taskstore"
	"github.com/hochfrequenz/task-engine/internal/timeutil"
	"github.com/hochfrequenz/task-engine/tui"
	"github.com/hochfrequenz/task-engine/web/api"
)

var (
	addProject   string
	addBucket    int
	addTags      []string
	addNotes     string
	addDeadline  string
	addEstimate  int
	addWindow    string
	addDependsOn []int

	listStatus  string
	listProject string

	planDate         string
	planLimit        int
	planNoTimeBlocks bool
	planTUI          bool

	servePort int
	serveHost string
)

func init() {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	addCmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskAdd,
	}
	addCmd.Flags().StringVar(&addProject, "project", "", "project name")
	addCmd.Flags().IntVar(&addBucket, "bucket", 0, "bucket (0 = none)")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "tag (repeatable)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	addCmd.Flags().StringVar(&addDeadline, "deadline", "", "deadline, RFC3339")
	addCmd.Flags().IntVar(&addEstimate, "estimate", 0, "estimate in minutes (0 = unset)")
	addCmd.Flags().StringVar(&addWindow, "window", "", "daily window HH:MM-HH:MM")
	addCmd.Flags().IntSliceVar(&addDependsOn, "depends-on", nil, "dependency task id (repeatable)")
	taskCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE:  runTaskList,
	}
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	listCmd.Flags().StringVar(&listProject, "project", "", "filter by project")
	taskCmd.AddCommand(listCmd)

	completeCmd := &cobra.Command{
		Use:   "complete ID",
		Short: "Mark a task complete",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskComplete,
	}
	taskCmd.AddCommand(completeCmd)

	reopenCmd := &cobra.Command{
		Use:   "reopen ID",
		Short: "Reopen a completed task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskReopen,
	}
	taskCmd.AddCommand(reopenCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runTaskDelete,
	}
	taskCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(taskCmd)

	planCmd := &cobra.Command{
		Use:   "plan [DATE]",
		Short: "Build and print today's (or DATE's) plan",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPlan,
	}
	planCmd.Flags().IntVar(&planLimit, "limit", 0, "max tasks to consider (0 = config default)")
	planCmd.Flags().BoolVar(&planNoTimeBlocks, "no-time-blocks", false, "list actionable tasks without scheduling time blocks")
	planCmd.Flags().BoolVar(&planTUI, "tui", false, "render the plan as a refreshable terminal dashboard instead of printing it")
	rootCmd.AddCommand(planCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the recurrence sweep",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (0 = config default)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "host to bind (empty = config default)")
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithLocalFallback(configPath)
}

func openStore(cfg *config.Config) (*taskstore.Store, error) {
	return taskstore.New(cfg.General.DatabasePath)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	input := store.TaskInput{
		Title:   args[0],
		Project: addProject,
		Tags:    addTags,
		Notes:   addNotes,
	}
	if addBucket != 0 {
		input.Bucket = &addBucket
	}
	if addEstimate > 0 {
		input.EstimateMinutes = &addEstimate
	}
	if addDeadline != "" {
		deadline, err := time.Parse(time.RFC3339, addDeadline)
		if err != nil {
			return fmt.Errorf("invalid --deadline: %w", err)
		}
		input.Deadline = &deadline
	}
	if addWindow != "" {
		start, end, err := parseWindowFlag(addWindow)
		if err != nil {
			return err
		}
		input.WindowStart = &start
		input.WindowEnd = &end
	}
	input.Dependencies = addDependsOn

	mgr := lifecycle.New(st)
	id, err := mgr.Create(context.Background(), input)
	if err != nil {
		return err
	}

	fmt.Printf("created task %d: %s\n", id, input.Title)
	return nil
}

func parseWindowFlag(s string) (string, string, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("--window must be HH:MM-HH:MM, got %q", s)
	}
	if _, err := timeutil.ParseHHMM(parts[0]); err != nil {
		return "", "", err
	}
	if _, err := timeutil.ParseHHMM(parts[1]); err != nil {
		return "", "", err
	}
	return parts[0], parts[1], nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.Filter{Project: listProject}
	if listStatus != "" {
		filter.Status = []domain.TaskStatus{domain.TaskStatus(listStatus)}
	}

	tasks, err := st.List(context.Background(), filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPROJECT")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Project)
	}
	return w.Flush()
}

func parseTaskID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	mgr := lifecycle.New(st)
	if err := mgr.Complete(context.Background(), id, time.Now()); err != nil {
		return err
	}

	fmt.Printf("completed task %d\n", id)
	return nil
}

func runTaskReopen(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	mgr := lifecycle.New(st)
	if err := mgr.Reopen(context.Background(), id); err != nil {
		return err
	}

	fmt.Printf("reopened task %d\n", id)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	mgr := lifecycle.New(st)
	if err := mgr.Delete(context.Background(), id); err != nil {
		return err
	}

	fmt.Printf("deleted task %d\n", id)
	return nil
}

func plannerOptionsFromConfig(cfg *config.Config) planner.Options {
	opts := planner.Options{
		WorkHoursStart:         cfg.Planner.WorkHoursStart,
		WorkHoursEnd:           cfg.Planner.WorkHoursEnd,
		DefaultEstimateMinutes: cfg.Planner.DefaultEstimateMinutes,
		Limit:                  cfg.Planner.Limit,
		IncludeTimeBlocks:      true,
	}
	if planLimit > 0 {
		opts.Limit = planLimit
	}
	if planNoTimeBlocks {
		opts.IncludeTimeBlocks = false
	}
	return opts
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	date := time.Now()
	if len(args) == 1 {
		date, err = time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("DATE must be YYYY-MM-DD: %w", err)
		}
	}

	if planTUI {
		model := tui.NewModel(st, plannerOptionsFromConfig(cfg))
		_, err := tea.NewProgram(model).Run()
		return err
	}

	plan, err := planner.PlanDay(context.Background(), st, date, plannerOptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	fmt.Printf("plan for %s — %d scheduled, %d unscheduled, %d min busy\n",
		plan.Date.Format("2006-01-02"), len(plan.Scheduled), len(plan.Unscheduled), plan.TotalScheduledMinutes)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "START\tEND\tTASK")
	for _, s := range plan.Scheduled {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			timeutil.FormatHHMM(s.Slot.Start), timeutil.FormatHHMM(s.Slot.End), s.Task.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(plan.Unscheduled) > 0 {
		fmt.Println("\nunscheduled:")
		for _, u := range plan.Unscheduled {
			fmt.Printf("  %s (%s)\n", u.Task.Title, u.Reason)
		}
	}

	return nil
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if local := config.FindLocalConfig(); local != "" {
		return local
	}
	return config.DefaultConfigPath()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	host := cfg.Web.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Web.Port
	if servePort != 0 {
		port = servePort
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	mgr := lifecycle.New(st)
	sweeper, err := recur.New(cfg.Recurrence, st, buildNotifier(cfg))
	if err != nil {
		return err
	}
	go sweeper.Start(context.Background())
	defer sweeper.Stop()

	if watchPath := resolveConfigPath(); watchPath != "" {
		watcher, err := config.NewWatcher(watchPath, func(newCfg *config.Config) {
			if err := sweeper.UpdateSchedule(newCfg.Recurrence); err != nil {
				fmt.Printf("config: ignoring reloaded recurrence settings: %v\n", err)
				return
			}
			fmt.Println("config: reloaded, recurrence schedule updated")
		})
		if err == nil {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	server := api.NewServer(st, mgr, plannerOptionsFromConfig(cfg), addr)

	fmt.Printf("listening on %s\n", addr)
	return server.Start()
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	notifiers := []notify.Notifier{}
	if cfg.Notifications.Desktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier(true))
	}
	if cfg.Notifications.SlackWebhook != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.Notifications.SlackWebhook))
	}
	if len(notifiers) == 0 {
		return notify.NoopNotifier{}
	}
	return notify.NewMultiNotifier(notifiers...)
}
