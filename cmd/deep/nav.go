package main

import (
	"github.com/spf13/cobra"

	"github.com/alexmglover/Deep"
	"github.com/alexmglover/Deep/pkg/output"
)

var (
	navTemplate     string
	navTemplateFile string
	navPath         string
	navParams       []string
	navOut          string
	navFormat       string
)

var navCmd = &cobra.Command{
	Use:   "nav",
	Short: "Render category navigation",
	Long: `Render the category tree as nested lists (default) or, with --param style=linear,
once per category in tree order. The request path marks the active category.

Example:
  deep nav --template '<a href="{path="blog/list"}">{category_name}</a>' --path blog/list/C3 --param class=nav`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := readTemplate(navTemplate, navTemplateFile)
		if err != nil {
			return err
		}
		params, err := parseParams(navParams)
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(navFormat)
		if err != nil {
			return err
		}
		svc, err := openService()
		if err != nil {
			return err
		}
		out, err := svc.CategoryNav(cmd.Context(), deep.Request{Template: tpl, Path: navPath, Params: params})
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), out, format, navOut)
	},
}

func init() {
	rootCmd.AddCommand(navCmd)
	f := navCmd.Flags()
	f.StringVarP(&navTemplate, "template", "t", "", "Inline template")
	f.StringVarP(&navTemplateFile, "template-file", "f", "", "Read the template from a file")
	f.StringVarP(&navPath, "path", "p", "", "Request path used to mark the active category")
	f.StringArrayVar(&navParams, "param", nil, "Tag parameter as key=value (repeatable)")
	f.StringVarP(&navOut, "out", "o", "", "Write output to a file atomically instead of stdout")
	f.StringVar(&navFormat, "format", "html", "Output format: html or markdown")
}
