package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/navigator"
	"github.com/fsnav/fsnav/internal/services"
	"github.com/fsnav/fsnav/internal/util/storageclass"
	strutil "github.com/fsnav/fsnav/internal/util/strings"
)

// newTransitionCmd creates the 'transition' command group.
func newTransitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Archive or restore files on S3-backed storages",
		Long: `Move files between S3 storage classes.

Commands:
  archive  - transition files to a colder storage class
  restore  - temporarily restore archived files`,
	}
	cmd.AddCommand(newArchiveCmd())
	cmd.AddCommand(newRestoreCmd())
	return cmd
}

// newArchiveCmd creates the 'transition archive' command.
func newArchiveCmd() *cobra.Command {
	var (
		class    string
		days     int
		password string
	)

	cmd := &cobra.Command{
		Use:   "archive <path> [path...]",
		Short: "Archive files to a colder storage class",
		Long: `Archive files to a colder S3 storage class.

Storage classes: ` + strings.Join(storageclass.Names(storageclass.ArchiveClasses), ", ") + `

Examples:
  fsnav transition archive /s3/logs/2023.tar --storage-class deep_archive
  fsnav archive /s3/logs/a.log /s3/logs/b.log --days 30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := services.TransitionOptions{
				Action:       models.TransitionArchive,
				StorageClass: class,
				Password:     password,
			}
			if cmd.Flags().Changed("days") {
				opts.Days = &days
			}
			return runTransition(GetContext(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&class, "storage-class", "s", "", "Target storage class (default GLACIER)")
	cmd.Flags().IntVarP(&days, "days", "d", 0, "Days before the transition takes effect")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Directory password")
	return cmd
}

// newRestoreCmd creates the 'transition restore' command.
func newRestoreCmd() *cobra.Command {
	var (
		tier     string
		days     int
		password string
	)

	cmd := &cobra.Command{
		Use:   "restore <path> [path...]",
		Short: "Restore archived files for a number of days",
		Long: `Restore archived files. The restored copy stays readable for --days days.

Tiers: ` + strings.Join(storageclass.Names(storageclass.RestoreTiers), ", ") + `

Examples:
  fsnav transition restore /s3/logs/2023.tar
  fsnav restore /s3/logs/2023.tar --days 2 --tier expedited`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := services.TransitionOptions{
				Action:   models.TransitionRestore,
				Tier:     tier,
				Password: password,
				Days:     &days,
			}
			return runTransition(GetContext(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&tier, "tier", "t", "", "Retrieval tier (default Standard)")
	cmd.Flags().IntVarP(&days, "days", "d", storageclass.DefaultRestoreDays, "Days the restored copy stays available")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Directory password")
	return cmd
}

func runTransition(ctx context.Context, paths []string, opts services.TransitionOptions) error {
	// Validate before any request.
	if _, err := services.BuildPayload(opts); err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	entries := make([]models.Entry, 0, len(paths))
	for _, p := range paths {
		p = navigator.CleanPath(p)
		desc, err := a.files.DescribeEntry(ctx, models.GetRequest{Path: p, Password: opts.Password})
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		entry := desc.Entry
		entry.Path = p
		entries = append(entries, entry)
	}

	report, err := a.transitions.Submit(ctx, navigator.RootPath, entries, opts)
	if report != nil {
		printReport(os.Stdout, report)
	}
	return err
}

// printReport summarizes a transition batch.
func printReport(w io.Writer, r *services.TransitionReport) {
	if len(r.Submitted) > 0 {
		fmt.Fprintf(w, "%s submitted for %s:\n", r.Action, strutil.Count(len(r.Submitted), "file"))
		for _, p := range r.Submitted {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	if len(r.TaskIDs) > 0 {
		fmt.Fprintf(w, "Tasks: %s (see 'fsnav tasks')\n", strings.Join(r.TaskIDs, ", "))
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped (directory or no storage class): %s\n", strings.Join(r.Skipped, ", "))
	}
	if r.FailedPath != "" {
		fmt.Fprintf(w, "Stopped at %s\n", r.FailedPath)
	}
}

// newTasksCmd creates the 'tasks' command.
func newTasksCmd() *cobra.Command {
	var done bool

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Show the S3 transition task log",
		Long: `Show pending and running S3 transition tasks, or finished ones with --done.

Requires an administrator token.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			tasks, err := a.tasks.List(GetContext(), done)
			if err != nil {
				return err
			}
			printTasks(os.Stdout, tasks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&done, "done", false, "Show finished tasks")

	cmd.AddCommand(&cobra.Command{
		Use:   "retry <task-id>",
		Short: "Retry a failed transition task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.tasks.Retry(GetContext(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Task %s re-queued\n", args[0])
			return nil
		},
	})
	return cmd
}

// printTasks writes the task list as a table.
func printTasks(w io.Writer, tasks []services.TaskSummary) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tPROGRESS\tSTARTED\tNAME\tSTATUS")
	for _, t := range tasks {
		status := t.Status
		if t.Error != "" {
			status = t.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%s\t%s\t%s\n",
			t.ID, t.State, t.Progress, strutil.FormatTime(t.Started), t.Name, status)
	}
	tw.Flush()
}
