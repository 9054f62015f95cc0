package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/taskq/internal/logging"
	"github.com/metalagman/taskq/internal/task"
	"github.com/metalagman/taskq/internal/ui"
)

func addCmd(a *app) *cobra.Command {
	var (
		priority string
		due      string
		deps     []string
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var dependencies []string
			for _, raw := range deps {
				dependencies = append(dependencies, task.SplitDependencies(raw)...)
			}
			t, err := svc.Add(cmd.Context(), task.Draft{
				Name:         strings.Join(args, " "),
				Priority:     priority,
				DueDate:      due,
				Dependencies: dependencies,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Task %q added.\n", t.Name)
			return err
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority, lower is more urgent")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&deps, "deps", nil, "names of tasks this one depends on (comma separated, repeatable)")
	_ = cmd.MarkFlagRequired("priority")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := task.ParseOrder(by)
			if err != nil {
				return err
			}
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return writeLine(cmd.OutOrStdout(), ui.FormatList(svc.List(order)))
		},
	}
	cmd.Flags().StringVar(&by, "by", string(task.OrderPriority), "sort order (priority|due)")
	return cmd
}

func doneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <name>",
		Aliases: []string{"complete"},
		Short:   "Complete and remove a task",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			name := strings.TrimSpace(strings.Join(args, " "))
			if _, err := svc.Complete(cmd.Context(), name); err != nil {
				var conflict *task.DependencyConflictError
				if logging.DebugEnabled() && errors.As(err, &conflict) {
					log.Debug().Strs("dependents", svc.Store().Dependents(name)).Msg("completion blocked")
				}
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Task %q completed and removed.\n", name)
			return err
		},
	}
}

func nextCmd(a *app) *cobra.Command {
	var relative bool
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the most urgent task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			t, err := svc.Peek()
			if errors.Is(err, task.ErrEmpty) {
				return writeLine(cmd.OutOrStdout(), "No pending tasks.")
			}
			if err != nil {
				return err
			}
			line := ui.FormatNext(t)
			if relative {
				line += " (" + ui.FormatDue(t.DueDate, time.Now()) + ")"
			}
			return writeLine(cmd.OutOrStdout(), line)
		},
	}
	cmd.Flags().BoolVar(&relative, "relative", false, "also show how far away the due date is")
	return cmd
}

func writeLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")
	return err
}
