package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazystreak/internal/web"
)

func serveCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard without the terminal UI",
		Long: `Run the web dashboard and JSON API in the foreground.

Examples:
  lazystreak serve --port 9090
  lazystreak serve --backend json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, session, backend, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer backend.Close()

			addr := fmt.Sprintf(":%d", cfg.WebPort)
			log.Printf("Web server running at http://localhost%s", addr)
			return web.NewServer(session).Run(addr)
		},
	}
}
