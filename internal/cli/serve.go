package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/staticsite/internal/app"
)

func newServeCmd(o *options) *cobra.Command {
	var opts app.ServeOptions
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site dynamically for previewing",
		Long: `Run the site behind the development HTTP server, the same handlers a
render pass dispatches to. The content file is reloaded when it changes,
or on SIGHUP. Stop it with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.load()
			if err != nil {
				return err
			}
			return a.Serve(cmd.Context(), opts)
		},
	}
	c.Flags().StringVar(&opts.Addr, "listen", "", "listen address (env: STATICSITE_LISTEN_ADDR, default 127.0.0.1:8000)")
	c.Flags().DurationVar(&opts.ReloadInterval, "reload-interval", 2*time.Second, "how often to check the content file for changes, 0 disables")
	return c
}
