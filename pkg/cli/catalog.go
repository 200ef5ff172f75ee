package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/anthonypate54/familynest/pkg/common"
	"github.com/anthonypate54/familynest/pkg/sources/catalog"
	"github.com/anthonypate54/familynest/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local media catalog",
}

var catalogIndexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Scan a directory and record its photos and videos in the catalog",
	Long: `Scan a media library directory and upsert every image and video into the
catalog database configured for the gateway (CONFIG_PATH / FAMILYNEST_CATALOG_*).`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogIndex,
}

func init() {
	catalogCmd.AddCommand(catalogIndexCmd)
}

func runCatalogIndex(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return types.NewContainerUnavailableError(fmt.Sprintf("%s: %v", dir, err))
	}
	if !info.IsDir() {
		return types.NewInvalidArgumentError(fmt.Sprintf("%s is not a directory", dir))
	}

	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return err
	}
	cfg := configManager.GetConfig()

	cat, err := catalog.NewSQLCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := catalog.NewIndexer(osfs.New(dir), dir, cat).Index(ctx)
	if err != nil {
		return err
	}

	if PrintStructured(stats) {
		return nil
	}

	PrintSuccess(fmt.Sprintf("Indexed %d file(s) from %s", stats.Indexed, dir))
	if stats.Skipped > 0 {
		PrintKeyValue("Skipped", fmt.Sprintf("%d", stats.Skipped))
	}
	return nil
}
