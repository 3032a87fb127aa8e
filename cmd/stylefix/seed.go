package main

import (
	"fmt"
	"sort"
	"time"

	"stylefix/internal/modkit/repokit"
	"stylefix/internal/platform/logger"
	"stylefix/internal/services/guidance/corpus"
	gdom "stylefix/internal/services/guidance/domain"
	guidancemod "stylefix/internal/services/guidance/module"
	"stylefix/internal/services/guidance/repo"
	"stylefix/internal/services/guidance/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Embed the guidance corpus and load it into the configured stores",
	Long: `Embed a YAML guidance corpus (the built-in one by default) and write it to
Postgres (--pg), ClickHouse (--ch) and/or a msgpack snapshot (--snapshot).
Entries are embedded once and the same vectors go to every target.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.String("corpus", "", "YAML corpus file (default: built-in corpus)")
	f.Bool("pg", false, "upsert into postgres (SERVICE_PGSQL_DBURL)")
	f.Bool("ch", false, "upsert into clickhouse (SERVICE_CLICKHOUSE_DBURL)")
	f.String("snapshot", "", "write a msgpack snapshot to this path")
	f.Int("batch", service.DefaultSeedBatch, "entries per embedding call")
	f.Duration("timeout", 5*time.Minute, "overall time budget")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	path, _ := f.GetString("corpus")
	toPG, _ := f.GetBool("pg")
	toCH, _ := f.GetBool("ch")
	snap, _ := f.GetString("snapshot")
	batch, _ := f.GetInt("batch")
	timeout, _ := f.GetDuration("timeout")
	if !toPG && !toCH && snap == "" {
		return fmt.Errorf("nothing to do; pass --pg, --ch or --snapshot")
	}

	entries, err := loadCorpus(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	deps, closeFn, err := openDeps(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	o := guidancemod.FromConfig(deps.Cfg)
	emb := guidancemod.NewEmbedder(o.Embed)

	ctx, cancel := contextWithTimeout(ctx, timeout)
	defer cancel()

	mem := repo.NewMemory()
	n, err := service.NewSeeder(emb, mem).WithBatch(batch).Seed(ctx, entries)
	if err != nil {
		return err
	}
	embedded := mem.Entries()
	dim := 0
	if len(embedded) > 0 {
		dim = len(embedded[0].Embedding)
	}

	var writers []gdom.CorpusWriter
	if toPG {
		if deps.PG == nil {
			return fmt.Errorf("--pg needs SERVICE_PGSQL_DBURL")
		}
		pg := repokit.MustBind(repo.NewPG(), deps.PG)
		if err := pg.EnsureSchema(ctx, dim); err != nil {
			return err
		}
		writers = append(writers, pg)
	}
	if toCH {
		if deps.CH == nil {
			return fmt.Errorf("--ch needs SERVICE_CLICKHOUSE_DBURL")
		}
		ch := repo.NewCH(deps.CH)
		if err := ch.EnsureSchema(ctx); err != nil {
			return err
		}
		writers = append(writers, ch)
	}
	if len(writers) > 0 {
		// vectors are already set, so this pass only writes
		if _, err := service.NewSeeder(emb, writers...).WithBatch(batch).Seed(ctx, embedded); err != nil {
			return err
		}
	}
	if snap != "" {
		if err := mem.SaveSnapshot(snap); err != nil {
			return err
		}
	}

	logger.Get().Info().Int("entries", n).Int("dim", dim).Msg("seed: done")
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "seeded %d entries (dim %d)\n", n, dim)
	return nil
}

func loadCorpus(path string) ([]gdom.Entry, error) {
	if path == "" {
		return corpus.Default()
	}
	return corpus.Load(path)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <path>",
	Short: "Describe a guidance snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mem, err := repo.LoadSnapshot(args[0])
		if err != nil {
			return err
		}
		entries := mem.Entries()
		dim := 0
		tags := map[string]int{}
		rules := map[string]struct{}{}
		for _, e := range entries {
			if dim == 0 {
				dim = len(e.Embedding)
			}
			rules[e.RuleID] = struct{}{}
			for _, t := range e.Tags {
				tags[t]++
			}
		}
		out := cmd.OutOrStdout()
		color.New(color.Bold).Fprintf(out, "%s\n", args[0])
		fmt.Fprintf(out, "  entries: %d\n  rules:   %d\n  dim:     %d\n", len(entries), len(rules), dim)
		names := make([]string, 0, len(tags))
		for t := range tags {
			names = append(names, t)
		}
		sort.Strings(names)
		for _, t := range names {
			fmt.Fprintf(out, "  %-16s %d\n", t, tags[t])
		}
		return nil
	},
}
