package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mergington/activities-api/internal/catalog"
	"github.com/mergington/activities-api/internal/registry"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func newCatalogCmd() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate and print the activity catalog",
		Long: `Load the activity catalog the server would start with, validate it, and print it.

The catalog comes from --catalog, the catalog.path of the configuration file, or
the built-in Mergington catalog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCatalog(cmd, v)
		},
	}

	cmd.Flags().String("config", "", "Path to configuration file (YAML format)")
	cmd.Flags().String("catalog", "", "Path to a YAML or JSON activity catalog")
	cmd.Flags().String("format", formatTable, "Output format (table or json)")

	bindFlags(cmd, v, "config", "catalog")

	return cmd
}

func runCatalog(cmd *cobra.Command, v *viper.Viper) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to read format flag: %w", err)
	}
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("unsupported format %q, use %s or %s", format, formatTable, formatJSON)
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	reg, err := catalog.LoadRegistry(cmd.Context(), catalog.NewSource(cfg.Catalog.Path), nil,
		registry.WithPolicy(cfg.Enrollment.Policy()))
	if err != nil {
		return err
	}

	if format == formatJSON {
		return writeCatalogJSON(cmd.OutOrStdout(), reg.List())
	}
	return writeCatalogTable(cmd.OutOrStdout(), reg.List())
}

func writeCatalogJSON(w io.Writer, c *registry.Catalog) error {
	output, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format catalog as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func writeCatalogTable(w io.Writer, c *registry.Catalog) error {
	table := tablewriter.NewWriter(w)
	table.Header("Activity", "Schedule", "Enrolled", "Spots Left")

	for _, name := range c.Names() {
		a, _ := c.Get(name)
		row := []string{
			name,
			a.Schedule,
			fmt.Sprintf("%d/%d", len(a.Participants), a.MaxParticipants),
			strconv.Itoa(a.SpotsLeft()),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to add %s to table: %w", name, err)
		}
	}

	return table.Render()
}
