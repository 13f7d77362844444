package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
)

func (a *app) hashgenCmd() *cobra.Command {
	var (
		set         string
		seed        uint64
		schemes     []string
		compression string
		params      = hashing.DefaultParams()
	)

	cmd := &cobra.Command{
		Use:   "hashgen",
		Short: "Generate hash tables and publish them as the current set",
		Long: `Generates one table per scheme covering every descriptor dimension and
publishes them under --set in the --tables store. The CURRENT pointer moves
only after every table is written.

Regenerating tables with a different seed or parameters invalidates the hash
tokens of every document indexed with the old set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.tableStore(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("--tables is required")
			}

			c, err := hashing.ParseCompression(compression)
			if err != nil {
				return err
			}

			var dims []int
			for _, k := range feature.Kinds() {
				dims = append(dims, k.Len())
			}

			var tables []*hashing.Table
			for _, name := range schemes {
				s, err := hashing.ParseScheme(name)
				if err != nil {
					return err
				}
				t, err := hashing.Generate(s, dims, seed, params)
				if err != nil {
					return err
				}
				tables = append(tables, t)
			}

			if err := hashing.Publish(ctx, store, set, c, tables...); err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%016x\n", set, t.Scheme(), t.Fingerprint())
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&set, "set", "v1", "name of the published table set")
	f.Uint64Var(&seed, "seed", 1, "generation seed")
	f.StringSliceVar(&schemes, "schemes", []string{"BIT_SAMPLING", "LSH"}, "schemes to generate")
	f.StringVar(&compression, "compression", "zstd", `blob compression ("none", "lz4", "zstd")`)
	f.IntVar(&params.Bundles, "bundles", params.Bundles, "BIT_SAMPLING tokens per descriptor")
	f.IntVar(&params.Bits, "bits", params.Bits, "BIT_SAMPLING hyperplanes per token")
	f.IntVar(&params.Functions, "functions", params.Functions, "LSH tokens per descriptor")
	f.Float64Var(&params.Width, "width", params.Width, "LSH bucket width")
	return cmd
}
