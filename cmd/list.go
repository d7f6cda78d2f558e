package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"thudl/internal/models"
	"thudl/pkg/utils"
)

// listPrintCap bounds the review table; beyond it only a count is shown.
const listPrintCap = 100

var listCmd = &cobra.Command{
	Use:   "list [share link]",
	Short: "List the files a download would fetch, without downloading",
	Long: `List the files behind a share link that match the glob pattern.

The output is the same review table the download command shows before its
confirmation prompt, so a listing can be inspected before committing to a
large transfer.`,
	Example: `  # List everything in the share
  thudl list https://cloud.tsinghua.edu.cn/d/abc123/

  # List only PDFs
  thudl list https://cloud.tsinghua.edu.cn/d/abc123/ -p '*.pdf'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runList(cmd, args)
	},
}

func runList(cmd *cobra.Command, args []string) {
	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	_, _, manifest, err := collectManifest(ctx, cmd, args[0])
	if err != nil {
		utils.PrintError(err, "list")
		return
	}
	if len(manifest) == 0 {
		fmt.Println("No file found.")
		return
	}

	printManifest(manifest)
	fmt.Printf("# Files: %d. Total size: %s.\n", len(manifest), utils.FormatBytes(manifest.TotalSize()))
}

func printManifest(manifest models.Manifest) {
	fmt.Println(strings.Repeat("=", 100))
	fmt.Printf("%-25s %12s  %s\n", "Last Modified Time", "File Size", "File Path")
	fmt.Println(strings.Repeat("-", 100))
	for i, entry := range manifest {
		if i == listPrintCap {
			fmt.Printf("... %d more files\n", len(manifest)-listPrintCap)
			break
		}
		fmt.Printf("%-25s %12s  %s\n", entry.LastModified, utils.FormatBytes(entry.Size), entry.Path())
	}
	fmt.Println(strings.Repeat("-", 100))
}

func init() {
	listCmd.Flags().Int("timeout", 600, "Timeout in seconds for the enumeration")
}
