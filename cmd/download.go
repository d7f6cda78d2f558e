package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"thudl/internal/models"
	"thudl/internal/progress"
	"thudl/internal/share"
	"thudl/pkg/utils"
)

var downloadCmd = &cobra.Command{
	Use:   "download [share link]",
	Short: "Download files matched by the pattern from a share link",
	Long: `Download files from a Tsinghua Cloud shared folder.

This command authenticates against the share link (prompting for a password
when the folder is protected), enumerates the whole folder tree, filters
file paths with the glob pattern, and after confirmation downloads the
matches into <output>/<share title>/ preserving remote subdirectories.`,
	Example: `  # Download everything from a share
  thudl download https://cloud.tsinghua.edu.cn/d/abc123/

  # Only slides, into a chosen directory
  thudl download https://cloud.tsinghua.edu.cn/d/abc123/ -p '*.pptx' --output /tmp/slides

  # Non-interactive run that zips the result
  thudl download https://cloud.tsinghua.edu.cn/d/abc123/ --yes --archive`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDownload(cmd, args)
	},
}

func runDownload(cmd *cobra.Command, args []string) {
	link := args[0]
	output, _ := cmd.Flags().GetString("output")
	yes, _ := cmd.Flags().GetBool("yes")
	shouldArchive, _ := cmd.Flags().GetBool("archive")

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	key, session, manifest, err := collectManifest(ctx, cmd, link)
	if err != nil {
		utils.PrintError(err, "download")
		return
	}
	if len(manifest) == 0 {
		fmt.Println("No file found.")
		return
	}

	printManifest(manifest)
	fmt.Printf("# Files: %d. Total size: %s.\n", len(manifest), utils.FormatBytes(manifest.TotalSize()))

	if !yes {
		ok, err := utils.Confirm(os.Stdin, "Start downloading? (y/N): ")
		if err != nil {
			utils.PrintError(err, "download")
			return
		}
		if !ok {
			fmt.Println("Download cancelled.")
			return
		}
	}

	title, err := session.FetchRootTitle(ctx, key)
	if err != nil {
		utils.PrintError(err, "download")
		return
	}
	saveRoot, err := resolveSaveRoot(output, title)
	if err != nil {
		utils.PrintError(err, "download")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Starting download operation...\n")
		cmd.Printf("  Share key: %s\n", key)
		cmd.Printf("  Save root: %s\n", saveRoot)
	}

	startTime := time.Now()
	reporter := progress.NewBar(manifest.TotalSize())
	downloader := share.NewDownloader(session, reporter, logger)
	items, failed := downloader.DownloadAll(ctx, key, manifest, saveRoot)

	result := &models.DownloadResult{
		ShareKey:         key,
		RootTitle:        title,
		SaveRoot:         saveRoot,
		Items:            items,
		Failed:           failed,
		TotalFiles:       len(manifest),
		TotalSizeBytes:   manifest.TotalSize(),
		TotalSizeHuman:   utils.FormatBytes(manifest.TotalSize()),
		OperationTime:    utils.FormatTime(startTime),
		DownloadDuration: time.Since(startTime).String(),
	}

	if shouldArchive {
		archivePath := saveRoot + ".zip"
		if err := utils.ArchiveDir(saveRoot, archivePath); err != nil {
			utils.PrintError(err, "download")
		} else {
			result.ArchivePath = archivePath
		}
	}

	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "download")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Download operation completed")
		cmd.Printf("Downloaded %d of %d files\n", len(items), len(manifest))
	}
}

// collectManifest runs the front half of the pipeline shared by download
// and list: key extraction, authentication, enumeration, sort.
func collectManifest(ctx context.Context, cmd *cobra.Command, link string) (string, *share.Session, models.Manifest, error) {
	key, err := share.ExtractShareKey(link)
	if err != nil {
		return "", nil, nil, err
	}

	matcher, err := share.NewMatcher(getPattern(cmd))
	if err != nil {
		return "", nil, nil, err
	}

	session, err := share.NewSession(logger,
		share.WithTimeout(time.Duration(cfg.HTTPTimeoutSeconds)*time.Second),
		share.WithPasswordPrompt(func() (string, error) {
			return utils.ReadPassword("Please enter the password: ")
		}),
	)
	if err != nil {
		return "", nil, nil, err
	}

	if err := session.Authenticate(ctx, key); err != nil {
		return "", nil, nil, err
	}

	logger.Info("searching for files, wait a moment")
	walker := share.NewWalker(session, logger)
	manifest, err := walker.Walk(ctx, key, "/", matcher)
	if err != nil {
		return "", nil, nil, err
	}
	manifest.Sort()
	return key, session, manifest, nil
}

// resolveSaveRoot picks the parent directory (flag, then OUTPUT_DIR, then
// ~/Downloads) and joins it with the share title.
func resolveSaveRoot(output, title string) (string, error) {
	parent := output
	if parent == "" {
		parent = cfg.OutputDir
	}
	if parent == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		parent = filepath.Join(home, "Downloads")
		if _, err := os.Stat(parent); err != nil {
			return "", fmt.Errorf("default save directory %s not found: %w", parent, err)
		}
	}
	return filepath.Join(parent, title), nil
}

func init() {
	downloadCmd.Flags().StringP("output", "o", "", "Directory to save the files under (default: OUTPUT_DIR or ~/Downloads)")
	downloadCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
	downloadCmd.Flags().Bool("archive", false, "Zip the save directory after the download finishes")
	downloadCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the whole operation (default: 1 hour)")
}
