package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/imgsim"
	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
)

func (a *app) searchCmd() *cobra.Command {
	var (
		field   string
		kind    string
		hash    string
		boost   float32
		k       int
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "search FILE",
		Short: "Rank indexed images by similarity to a query image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			fk, err := feature.ParseKind(kind)
			if err != nil {
				return err
			}
			opts := []imgsim.QueryOption{imgsim.WithBoost(boost)}
			if hash != "" {
				s, err := hashing.ParseScheme(hash)
				if err != nil {
					return err
				}
				opts = append(opts, imgsim.WithHash(s))
			}

			data, err := readFile(args[0])
			if err != nil {
				return err
			}

			eng, closeFn, err := a.openEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			q, err := eng.NewQuery(field, fk, data, opts...)
			if err != nil {
				return err
			}
			results, err := eng.Search(ctx, q, k)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, r := range results {
				fmt.Fprintf(out, "%d\t%d\t%g\n", i+1, r.Doc, r.Score)
				if explain {
					ex, err := eng.Explain(ctx, q, r.Segment, r.Doc)
					if err != nil {
						return err
					}
					fmt.Fprint(out, ex)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&field, "field", "image", "image field to search")
	f.StringVar(&kind, "feature", "COLOR_LAYOUT", "descriptor kind to compare")
	f.StringVar(&hash, "hash", "", "restrict candidates with this hash scheme (BIT_SAMPLING or LSH)")
	f.Float32Var(&boost, "boost", 1, "score multiplier")
	f.IntVarP(&k, "limit", "k", 10, "number of results")
	f.BoolVar(&explain, "explain", false, "print how each score was computed")
	return cmd
}
