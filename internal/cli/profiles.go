package cli

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var profilesJSON bool

type profileEntry struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description,omitempty"`
	Steps          int    `json:"steps"`
	Default        bool   `json:"default,omitempty"`
	GUIReplacement bool   `json:"guiReplacement,omitempty"`
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfiles,
}

func init() {
	profilesCmd.Flags().BoolVar(&profilesJSON, "json", false, "output profiles as JSON")
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	set := a.cleaner.Profiles()
	entries := make([]profileEntry, 0, len(set.Names()))
	for _, p := range set.Profiles() {
		entries = append(entries, profileEntry{
			Name:           p.Name,
			DisplayName:    p.Label(),
			Description:    p.Description,
			Steps:          p.Len(),
			Default:        p.Name == set.DefaultName(),
			GUIReplacement: p.Name == set.GUIReplacementName(),
		})
	}

	if profilesJSON {
		return printJSON(cmd, entries)
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Name", "Display name", "Steps", "Description"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, e := range entries {
		name := e.Name
		var marks []string
		if e.Default {
			marks = append(marks, "default")
		}
		if e.GUIReplacement {
			marks = append(marks, "gui")
		}
		if len(marks) > 0 {
			name += " (" + strings.Join(marks, ", ") + ")"
		}
		table.Append([]string{name, e.DisplayName, strconv.Itoa(e.Steps), e.Description})
	}
	table.Render()
	return nil
}
