package main

import (
	"github.com/spf13/cobra"

	"github.com/metalagman/taskq/internal/ui"
)

func menuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return ui.Run(cmd.Context(), svc)
		},
	}
}
