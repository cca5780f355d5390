package cmd

import (
	"context"
	"fmt"
	"strings"

	"media-inventory/core/config"
	"media-inventory/core/database"
	"media-inventory/core/utils"
	"media-inventory/feature/inventory/models"
	"media-inventory/feature/inventory/tree"

	"github.com/spf13/cobra"
)

// treeCmd prints the occupancy tree of a device.
var treeCmd = &cobra.Command{
	Use:   "tree <device-slug>",
	Short: "Print the occupancy tree of a device",
	Long: `Tree prints the aggregated directory hierarchy of a device with the
recursive file counts and cumulative sizes of every node.`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	RootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	deviceSlug := args[0]

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	var device models.Device
	if err := db.WithContext(ctx).Where("slug = ?", deviceSlug).First(&device).Error; err != nil {
		return fmt.Errorf("unknown device slug %q: %w", deviceSlug, err)
	}

	root, err := tree.BuildTree(ctx, db, &device)
	if err != nil {
		return fmt.Errorf("failed to build tree: %w", err)
	}
	if root == nil {
		fmt.Printf("Device %q has no directories yet.\n", deviceSlug)
		return nil
	}

	printNode(root, 0)
	return nil
}

func printNode(node *tree.Node, depth int) {
	fmt.Printf("%s%s  [%s file(s), %s]\n",
		strings.Repeat("  ", depth),
		node.Path,
		utils.FormatNumber(node.RecursiveFiles),
		utils.FormatByteSize(node.RecursiveFilesize),
	)
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}
