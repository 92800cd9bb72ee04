package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"arbridge/internal/config"
)

// buildRootCmd constructs the command tree. Global flags land in opts.
func buildRootCmd(opts *Options, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "arbridge",
		Short:         "AR session and model lifecycle service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Config file (.yaml, .yml, .json, .jsonc, .toml)")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	root.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "Log format: json|console (overrides config)")

	// serve
	var addr, assetsDir, platform string
	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP service",
		Example: "  arbridge serve --addr :8080 --assets-dir ./assets\n  arbridge serve --config arbridge.yaml",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts, map[string]*string{
				"addr":       &addr,
				"assets-dir": &assetsDir,
				"platform":   &platform,
			})
			if err != nil {
				return err
			}
			return fnServe(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080")
	serveCmd.Flags().StringVar(&assetsDir, "assets-dir", "", "Directory of bundled model assets")
	serveCmd.Flags().StringVar(&platform, "platform", "", "Runtime profile: arcore|none")
	root.AddCommand(serveCmd)

	// call
	var cf callFlags
	callCmd := &cobra.Command{
		Use:   "call <method>",
		Short: "Send one method call to a running server",
		Example: "  arbridge call initializeAR\n" +
			"  arbridge call loadLocalModel --args '{\"modelId\":\"statue\",\"assetPath\":\"statue.glb\",\"scale\":0.5}'\n" +
			"  arbridge call getARStatus --query models.#.id",
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnCall(cmd.Context(), args[0], cf, cmd.OutOrStdout())
		},
	}
	callCmd.Flags().StringVar(&cf.Server, "server", "http://127.0.0.1:8080", "Base URL of the arbridge server")
	callCmd.Flags().StringVar(&cf.Args, "args", "", "Arguments as a JSON object")
	callCmd.Flags().BoolVar(&cf.CBOR, "cbor", false, "Encode the request and response as CBOR")
	callCmd.Flags().StringVar(&cf.Query, "query", "", "Print only this gjson path of the response")
	callCmd.Flags().DurationVar(&cf.Timeout, "timeout", 30*time.Second, "HTTP client timeout")
	root.AddCommand(callCmd)

	// assets
	var assetsFlag string
	var asJSON bool
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "List model assets in the assets directory",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts, map[string]*string{"assets-dir": &assetsFlag})
			if err != nil {
				return err
			}
			return fnAssets(cfg, asJSON, cmd.OutOrStdout())
		},
	}
	assetsCmd.Flags().StringVar(&assetsFlag, "assets-dir", "", "Directory of bundled model assets")
	assetsCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	root.AddCommand(assetsCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	root.AddCommand(completionCmd)

	root.SetOut(out)
	return root
}

// resolveConfig loads the config file and environment, then applies flags
// the user set explicitly. Flags win over env, env wins over the file.
func resolveConfig(cmd *cobra.Command, opts *Options, flags map[string]*string) (config.Config, error) {
	cfg, err := config.Resolve(opts.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	for name, v := range flags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		switch name {
		case "addr":
			cfg.Addr = *v
		case "assets-dir":
			cfg.AssetsDir = *v
		case "platform":
			cfg.Platform = *v
		}
	}
	return cfg, nil
}
