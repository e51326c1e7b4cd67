package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/edvin/opsdash/internal/model"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage addon repository checkouts",
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		var repos []model.Repo
		if err := newClient().get("/repos", &repos); err != nil {
			return err
		}
		tw := tablewriter.NewWriter(os.Stdout)
		tw.SetHeader([]string{"ID", "NAME", "URL", "BRANCH"})
		for _, repo := range repos {
			branch := repo.Branch
			if branch == "" {
				branch = "-"
			}
			tw.Append([]string{repo.ID, repo.Name, repo.URL, branch})
		}
		tw.Render()
		return nil
	},
}

var (
	flagRepoName   string
	flagRepoBranch string
)

var repoCloneCmd = &cobra.Command{
	Use:   "clone <url>",
	Short: "Clone a repository into the managed checkout area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := flagRepoName
		if name == "" {
			name = repoNameFromURL(args[0])
		}
		body := map[string]string{
			"url":    args[0],
			"name":   name,
			"branch": flagRepoBranch,
		}
		var repo model.Repo
		if err := newClient().post("/repos", body, &repo); err != nil {
			return err
		}
		fmt.Printf("Cloned %s as %s (%s)\n", repo.URL, repo.Name, repo.ID)
		return nil
	},
}

var repoStatusCmd = &cobra.Command{
	Use:   "status <repo-id>",
	Short: "Show a checkout's state relative to its remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var status model.RepoStatus
		if err := newClient().get("/repos/"+args[0]+"/status", &status); err != nil {
			return err
		}
		fmt.Printf("Branch: %s\n", status.Branch)
		fmt.Printf("Head:   %s\n", status.HeadCommit)
		fmt.Printf("Ahead:  %d\n", status.Ahead)
		fmt.Printf("Behind: %d\n", status.Behind)
		fmt.Printf("Dirty:  %v\n", status.Dirty)
		return nil
	},
}

var repoPullCmd = &cobra.Command{
	Use:   "pull <repo-id>",
	Short: "Fast-forward a checkout from its remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().post("/repos/"+args[0]+"/pull", nil, nil); err != nil {
			return err
		}
		fmt.Printf("Pulled %s\n", args[0])
		return nil
	},
}

var repoDeleteCmd = &cobra.Command{
	Use:   "delete <repo-id>",
	Short: "Remove a checkout and its registration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().delete("/repos/" + args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// repoNameFromURL derives a checkout name from the last path segment of
// a clone URL, stripping a trailing .git.
func repoNameFromURL(url string) string {
	name := strings.TrimSuffix(url, "/")
	if idx := strings.LastIndexAny(name, "/:"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

func init() {
	repoCloneCmd.Flags().StringVar(&flagRepoName, "name", "", "Checkout name (defaults to the repository name)")
	repoCloneCmd.Flags().StringVar(&flagRepoBranch, "branch", "", "Branch to clone (defaults to the remote default)")
	repoCmd.AddCommand(repoListCmd)
	repoCmd.AddCommand(repoCloneCmd)
	repoCmd.AddCommand(repoStatusCmd)
	repoCmd.AddCommand(repoPullCmd)
	repoCmd.AddCommand(repoDeleteCmd)
}
