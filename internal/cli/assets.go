package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"arbridge/internal/config"
	"arbridge/internal/manager"
	"arbridge/internal/registry"
)

// runAssets scans the configured assets directory and prints what a
// loadLocalModel call could reference.
func runAssets(cfg config.Config, asJSON bool, out io.Writer) error {
	if cfg.AssetsDir == "" {
		return fmt.Errorf("no assets directory configured (use --assets-dir or assets_dir)")
	}
	formats := manager.NewSimAdapter(manager.SimConfig{Platform: cfg.Platform}).Capabilities().SupportedFormats
	cat, err := registry.LoadDir(cfg.AssetsDir, formats)
	if err != nil {
		return err
	}
	list := cat.List()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"root": cat.Root(), "assets": list})
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tFORMAT\tSIZE")
	for _, a := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Path, a.Format, humanize.Bytes(uint64(a.SizeBytes)))
	}
	return tw.Flush()
}
