package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/HendryAvila/cca/internal/resolver"
	ccaserver "github.com/HendryAvila/cca/internal/server"
	"github.com/HendryAvila/cca/internal/surfaces"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newProjectsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List captured projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.store().ListProjects()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if projects == nil {
					projects = []string{}
				}
				return json.NewEncoder(out).Encode(projects)
			}
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects have been initialized. Run \"cca init\" first.")
				return nil
			}
			for _, p := range projects {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the project names as a JSON array")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tree [project]",
		Short: "Show a project's domains and topics",
		Long: `Tree prints the domains and topics of a project. Without a project argument
the project is detected from the working directory, or used directly when only
one project exists.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.store()

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				res, err := resolver.New(store).Resolve(resolver.Request{})
				if err != nil {
					if errors.Is(err, resolver.ErrNoProjects) {
						return errors.New("no projects have been initialized; run \"cca init\" first")
					}
					return fmt.Errorf("%w; pass the project name", err)
				}
				name = res.Name
			}

			structure, err := store.ListProjectStructure(name)
			if err != nil {
				return err
			}
			if structure == nil {
				return fmt.Errorf("no context exists for project %q", name)
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(structure)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(structure); err != nil {
					return err
				}
				return enc.Close()
			case "text":
				fmt.Fprintf(out, "%s (%s)\n", structure.Project, store.ProjectPath(name))
				if tree := surfaces.RenderTree(structure); tree != "" {
					fmt.Fprintln(out, tree)
				} else {
					fmt.Fprintln(out, "(no topics yet)")
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project> [domain] [topic]",
		Short: "Delete a project, a domain or a topic",
		Example: `  cca delete api                      # Delete the whole project
  cca delete api Security             # Delete one domain
  cca delete api Security auth        # Delete one topic`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.store()

			var (
				deleted bool
				err     error
				what    string
			)
			switch len(args) {
			case 1:
				what = fmt.Sprintf("project %q", args[0])
				deleted, err = store.DeleteProject(args[0])
			case 2:
				what = fmt.Sprintf("domain %s/%s", args[0], args[1])
				deleted, err = store.DeleteDomain(args[0], args[1])
			default:
				what = fmt.Sprintf("topic %s/%s/%s%s", args[0], args[1], args[2], knowledge.TopicExt)
				deleted, err = store.DeleteTopic(args[0], args[1], args[2])
			}
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("%s does not exist", what)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", what)
			return nil
		},
	}
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> <domain> [topic] <new-name>",
		Short: "Rename a domain or a topic",
		Example: `  cca rename api Security Auth            # Rename a domain
  cca rename api Security jwt tokens      # Rename a topic`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.store()

			var (
				renamed bool
				err     error
				what    string
			)
			if len(args) == 3 {
				what = fmt.Sprintf("domain %s/%s", args[0], args[1])
				renamed, err = store.RenameDomain(args[0], args[1], args[2])
			} else {
				what = fmt.Sprintf("topic %s/%s/%s%s", args[0], args[1], args[2], knowledge.TopicExt)
				renamed, err = store.RenameTopic(args[0], args[1], args[2], args[3])
			}
			if err != nil {
				return err
			}
			if !renamed {
				return fmt.Errorf("%s does not exist", what)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", what, args[len(args)-1])
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "cca %s\n", ccaserver.Version)
			return nil
		},
	}
}
