package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/tags"
)

var (
	tagsTemplate     string
	tagsTemplateFile string
	tagsPrefix       string
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the variable tags a template declares",
	Long:  `Scan a template and print its tag catalog as JSON: single tags, pair tags and their parameters.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := readTemplate(tagsTemplate, tagsTemplateFile)
		if err != nil {
			return err
		}
		b := tags.Builder{Logger: logger}
		cat := b.Discover(tpl, core.Prefix(tagsPrefix))
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cat)
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	f := tagsCmd.Flags()
	f.StringVarP(&tagsTemplate, "template", "t", "", "Inline template")
	f.StringVarP(&tagsTemplateFile, "template-file", "f", "", "Read the template from a file")
	f.StringVar(&tagsPrefix, "prefix", "", "Only list tags under this namespace (e.g. parents)")
}
