package autocomplete

import (
	"github.com/ferama/rexpect/pkg/utils"
	"github.com/spf13/cobra"
)

// Host completes the first argument with the hosts of ~/.ssh/config
//
// Test with:
//
//	go build . && eval "$(./rexpect completion zsh)"
//	./rexpect ssh <tab> <tab>
func Host() func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		shellDirective := cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
		if len(args) != 0 {
			return nil, shellDirective
		}

		return utils.SSHConfigHostNames(), shellDirective
	}
}
