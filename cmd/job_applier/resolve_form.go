package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-applier/internal/types"
)

var resolveFormCmd = &cobra.Command{
	Use:   "resolve-form",
	Short: "Resolve and print the form schema of one page",
	Long: `Opens the page in the browser, sends its first form (or the whole body when there is no form)
to the LLM and prints the resulting field locators. The result is stored in the form schema cache.
A cached schema is printed as is unless --refresh is given.`,
	RunE: runResolveForm,
}

var (
	resolveFlags runFlags
	resolveURL   string
	resolveShape string
	resolveFresh bool
)

func init() {
	resolveFlags.register(resolveFormCmd)
	resolveFormCmd.Flags().StringVarP(&resolveURL, "url", "u", "", "Page URL (required)")
	resolveFormCmd.Flags().StringVar(&resolveShape, "shape", "full", "Target layout: quick or full")
	resolveFormCmd.Flags().BoolVar(&resolveFresh, "refresh", false, "Ignore the cached schema and replace it")

	_ = resolveFormCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(resolveFormCmd)
}

// shapeByName maps the --shape flag to a target layout.
func shapeByName(name string) (types.Shape, error) {
	switch name {
	case "quick":
		return types.QuickApplyShape(), nil
	case "full", "":
		return types.FullFormShape(), nil
	default:
		return types.Shape{}, fmt.Errorf("unknown shape %q: use quick or full", name)
	}
}

func runResolveForm(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	shape, err := shapeByName(resolveShape)
	if err != nil {
		return err
	}
	cfg, err := resolveFlags.load(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Navigate(ctx, resolveURL); err != nil {
		return fmt.Errorf("failed to open %s: %w", resolveURL, err)
	}
	selector := "body"
	if a.session.WaitPresent(ctx, "form", cfg.WaitTimeout) {
		selector = "form"
	}
	html, err := a.session.OuterHTML(ctx, selector)
	if err != nil {
		return fmt.Errorf("failed to read page: %w", err)
	}

	resolve := a.resolver.Resolve
	if resolveFresh {
		resolve = a.resolver.Refresh
	}
	schema, err := resolve(ctx, html, resolveURL, shape)
	if err != nil {
		return err
	}
	a.printer.PrintFormSchema(resolveURL, schema)
	return nil
}
