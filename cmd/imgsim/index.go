package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) indexCmd() *cobra.Command {
	var (
		field       string
		mappingPath string
	)

	cmd := &cobra.Command{
		Use:   "index FILE...",
		Short: "Index images into the sqlite segment",
		Long: `Indexes each image as one document of --field and prints its document
number. A --mapping document is registered first and persisted in the
segment, so later runs only need --field.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, closeFn, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if mappingPath != "" {
				data, err := readFile(mappingPath)
				if err != nil {
					return err
				}
				specs, err := eng.RegisterMapping(ctx, data)
				if err != nil {
					return err
				}
				for _, s := range specs {
					fmt.Fprintf(cmd.ErrOrStderr(), "registered %s\n", s)
				}
			}

			for _, path := range args {
				data, err := readFile(path)
				if err != nil {
					return err
				}
				doc, err := eng.IndexImage(ctx, field, data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", doc, path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&field, "field", "image", "image field to index into")
	f.StringVar(&mappingPath, "mapping", "", `mapping document, e.g. {"properties":{"image":{"type":"image","feature":["COLOR_LAYOUT"]}}}`)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete DOC...",
		Short: "Delete documents from the sqlite segment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, closeFn, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			for _, arg := range args {
				var doc int
				if _, err := fmt.Sscan(arg, &doc); err != nil {
					return fmt.Errorf("invalid document number %q", arg)
				}
				if err := eng.Delete(ctx, doc); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
