package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/eepp/lttngpack/pkg/config"
)

// distrosCommand creates the distros command, which lists the supported
// data sources without fetching anything.
func (c *CLI) distrosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "distros",
		Short: "List the supported distributions and build systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			for _, name := range providerNames(providers(config.Default(), nil, false)) {
				enabled := len(cfg.Distros) == 0
				for _, want := range cfg.Distros {
					if strings.EqualFold(want, name) {
						enabled = true
					}
				}
				if enabled {
					printInfo("%s", name)
				} else {
					printDetail("%s (disabled by config)", name)
				}
			}
			return nil
		},
	}
}
