package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alexmglover/Deep"
	lcadapter "github.com/alexmglover/Deep/pkg/adapters/lifecycle"
	"github.com/alexmglover/Deep/pkg/core"
	"github.com/alexmglover/Deep/pkg/output"
)

var (
	renderTemplate     string
	renderTemplateFile string
	renderPath         string
	renderBase         string
	renderParams       []string
	renderOut          string
	renderFormat       string
	renderWatch        bool
	renderWatchPattern string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an entry listing",
	Long: `Render a template once per entry matching the request path and parameters.

Examples:
  deep render --template '<h2>{title}</h2>' --path blog/2024/03 --base blog
  deep render --template-file list.html --param limit=5 --param orderby=title --out public/index.html
  deep render --template-file list.html --format markdown --watch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := readTemplate(renderTemplate, renderTemplateFile)
		if err != nil {
			return err
		}
		params, err := parseParams(renderParams)
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(renderFormat)
		if err != nil {
			return err
		}
		svc, err := openService()
		if err != nil {
			return err
		}

		req := deep.Request{Template: tpl, Path: renderPath, Base: renderBase, Params: params}
		run := func(ctx context.Context) error {
			out, err := svc.Entries(ctx, req)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), out, format, renderOut)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := run(ctx); err != nil {
			return err
		}
		if !renderWatch {
			return nil
		}
		return watch(ctx, svc, renderWatchPattern, run)
	},
}

// emit converts rendered output and writes it to path, or to w when path
// is empty.
func emit(w io.Writer, rendered string, format output.Format, path string) error {
	if path == "" {
		out, err := output.Convert(rendered, format)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	}
	res, err := output.Write(path, rendered, format)
	if err != nil {
		return err
	}
	if res.Unchanged {
		logger.Debug("output unchanged", "path", res.Path)
		return nil
	}
	logger.Info("wrote output", "path", res.Path, "format", res.Format, "bytes", res.Bytes)
	return nil
}

// watch re-runs fn on every vault change until ctx is done. Render failures
// are logged and do not stop the loop.
func watch(ctx context.Context, svc *deep.Service, pattern string, fn func(context.Context) error) error {
	events, err := svc.Watch(ctx, pattern)
	if err != nil {
		return err
	}
	src := lcadapter.NewSource(events, core.EventCreate, core.EventModify, core.EventDelete)
	if err := src.Start(ctx); err != nil {
		return err
	}
	logger.Info("watching vault", "pattern", pattern)

	for e := range src.Events() {
		logger.Debug("vault changed", "event", e.String())
		if err := fn(ctx); err != nil {
			logger.Error("render failed", "error", err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	f := renderCmd.Flags()
	f.StringVarP(&renderTemplate, "template", "t", "", "Inline template")
	f.StringVarP(&renderTemplateFile, "template-file", "f", "", "Read the template from a file")
	f.StringVarP(&renderPath, "path", "p", "", "Request path (e.g. blog/2024/03)")
	f.StringVar(&renderBase, "base", "", "Leading path segments that address the template itself")
	f.StringArrayVar(&renderParams, "param", nil, "Tag parameter as key=value (repeatable)")
	f.StringVarP(&renderOut, "out", "o", "", "Write output to a file atomically instead of stdout")
	f.StringVar(&renderFormat, "format", "html", "Output format: html or markdown")
	f.BoolVarP(&renderWatch, "watch", "w", false, "Re-render when the vault changes")
	f.StringVar(&renderWatchPattern, "watch-pattern", "**", "Only re-render for vault paths matching this glob")
}
