package cmd

import (
	"github.com/spf13/cobra"
)

// completeEnvTags offers declared environment tags as completion
// candidates, grounded on original_source's per-resource completion
// helpers and implemented via Cobra's native ValidArgsFunction.
func completeEnvTags(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, err := mustApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var tags []string
	for _, e := range a.Mgr.GetEnvironments() {
		tags = append(tags, e.Tag)
	}
	return tags, cobra.ShellCompDirectiveNoFileComp
}

// completeServiceTags offers the active environment's service tags.
func completeServiceTags(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, err := mustApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	env, err := a.RequireActiveEnvironment()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return a.Mgr.GetServiceTags(env), cobra.ShellCompDirectiveNoFileComp
}

// completeEnvTemplateTags offers declared environment template tags.
func completeEnvTemplateTags(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, err := mustApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return a.Mgr.GetEnvironmentTemplateTags(), cobra.ShellCompDirectiveNoFileComp
}

// completeProbeTags offers the active environment's probe tags.
func completeProbeTags(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, err := mustApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	env, err := a.RequireActiveEnvironment()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return a.Mgr.GetProbeTags(env), cobra.ShellCompDirectiveNoFileComp
}

func init() {
	initCmd.ValidArgsFunction = completeEnvTemplateTags
	checkoutCmd.ValidArgsFunction = completeEnvTags
	deleteCmd.ValidArgsFunction = completeEnvTags
	renameCmd.ValidArgsFunction = completeEnvTags
	cloneCmd.ValidArgsFunction = completeEnvTags

	getEnvCmd.ValidArgsFunction = completeEnvTags
	getSvcCmd.ValidArgsFunction = completeServiceTags
	getProbeCmd.ValidArgsFunction = completeProbeTags
	logsCmd.ValidArgsFunction = completeServiceTags
	shellCmd.ValidArgsFunction = completeServiceTags
	checkCmd.ValidArgsFunction = completeProbeTags
}
