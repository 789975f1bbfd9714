package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coda-agent/coda/tool"
	"github.com/coda-agent/coda/tool/builtin"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := tool.NewRegistry()
			if err := builtin.Register(registry); err != nil {
				return err
			}

			for _, name := range registry.Names() {
				t, err := registry.Get(name)
				if err != nil {
					return err
				}
				fmt.Println(titleStyle.Render(name))
				fmt.Println("  " + dimStyle.Render(firstLine(t.Description())))
				for _, p := range t.Parameters() {
					required := ""
					if p.Required {
						required = " (required)"
					}
					fmt.Printf("    %s %s%s\n", p.Name, dimStyle.Render(p.Type), dimStyle.Render(required))
				}
				fmt.Println()
			}
			return nil
		},
	}
}
