package cmd

import (
	"github.com/spf13/cobra"

	"github.com/moonyfringers/shpctl/internal/shepherd/shperr"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a resource to the active environment",
}

var addSvcCmd = &cobra.Command{
	Use:   "svc <tag> [<template>] [<class>]",
	Short: "Add a service to the active environment, instantiated from a service template",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := mustApp()
		if err != nil {
			return err
		}
		env, err := a.RequireActiveEnvironment()
		if err != nil {
			return err
		}
		tag := args[0]
		if _, err := findService(env, tag); err == nil {
			return shperr.Precondition("service %q already exists in environment %q", tag, env.Tag)
		}

		template := tag
		if len(args) >= 2 {
			template = args[1]
		}
		class := ""
		if len(args) >= 3 {
			class = args[2]
		}

		st, err := a.Mgr.GetServiceTemplate(template)
		if err != nil {
			return err
		}
		svc, err := a.Mgr.SvcFromServiceTemplate(st, tag, class)
		if err != nil {
			return err
		}
		env.Services = append(env.Services, *svc)
		a.Mgr.AddOrSetEnvironment(*env)
		return a.Mgr.Store()
	},
}

func init() {
	addCmd.AddCommand(addSvcCmd)
	rootCmd.AddCommand(addCmd)
}
