package main

import (
	"context"
	"time"

	"stylefix/internal/mcp"
	"stylefix/internal/platform/logger"
	"stylefix/internal/services/api"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the suggest_rewrite tool over MCP stdio",
	Long: `Starts an MCP server on stdin/stdout exposing suggest_rewrite. Logs go to
stderr. Backends come from the CORE_* environment.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		deps, closeFn, err := openDeps(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		p := api.Build(deps)
		go func() {
			if err := p.RunBackground(ctx); err != nil && ctx.Err() == nil {
				logger.Get().Warn().Err(err).Msg("mcp: background loop stopped")
			}
		}()

		logger.Get().Info().Msg("mcp: serving suggest_rewrite over stdio")
		return mcp.NewServer(p.Suggest.Service()).Run(ctx)
	},
}

func contextWithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
