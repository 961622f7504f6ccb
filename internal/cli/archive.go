// Package cli provides archive and extraction commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/craftdeck/craftdeck/internal/jobs"
	"github.com/craftdeck/craftdeck/internal/progress"
)

// newArchiveCmd creates the 'archive' command.
func newArchiveCmd() *cobra.Command {
	var cwd string
	var filename string

	cmd := &cobra.Command{
		Use:   "archive <entry> [entry...]",
		Short: "Create an archive from entries on the server",
		Long: `Create an archive on the remote server from the given entries. The
archive is built server-side; progress is streamed back.

Examples:
  # Archive the world directory
  craftdeck archive world --filename world-backup.tar.gz

  # Archive several entries from a subdirectory
  craftdeck archive logs crash-reports --cwd / --filename diagnostics.zip`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}

			ui := progress.NewPercentUI("archive " + filename)
			restore := redirectLogOutput(ui)
			defer restore()

			h, err := jobs.CreateArchive(GetContext(), client, jobs.ArchiveSpec{
				Paths:    args,
				Cwd:      cwd,
				Filename: filename,
			}, percentCallbacks(ui), jobBus())
			if err != nil {
				ui.Abort()
				return err
			}
			return awaitJob(GetContext(), h, nil)
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", "/", "Directory the entries are relative to")
	cmd.Flags().StringVar(&filename, "filename", "archive.tar.gz", "Name of the archive to create")
	return cmd
}

// newExtractCmd creates the 'extract' command.
func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <archive-path> <dest-dir>",
		Short: "Extract an archive on the server",
		Long: `Extract a remote archive into a directory on the server. Extraction
runs server-side; progress is streamed back.

Examples:
  craftdeck extract /backups/world-backup.tar.gz /world`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}

			ui := progress.NewPercentUI("extract")
			restore := redirectLogOutput(ui)
			defer restore()

			h, err := jobs.Extract(GetContext(), client, jobs.ExtractSpec{
				ArchivePath: args[0],
				OutputDir:   args[1],
			}, percentCallbacks(ui), jobBus())
			if err != nil {
				ui.Abort()
				return err
			}
			return awaitJob(GetContext(), h, nil)
		},
	}
	return cmd
}

// percentCallbacks drives a percentage bar from job callbacks.
func percentCallbacks(ui *progress.PercentUI) jobs.Callbacks {
	return jobs.Callbacks{
		OnProgress: ui.SetPercent,
		OnSuccess:  ui.Done,
		OnError: func(message string) {
			ui.Abort()
			GetLogger().Error().Str("reason", message).Msg("job failed")
		},
		OnCancelled: ui.Abort,
	}
}

// redirectLogOutput routes log lines through the progress renderer so they
// print above a live bar instead of tearing through it. The returned func
// restores the previous destination.
func redirectLogOutput(ui *progress.PercentUI) func() {
	log := GetLogger()
	prev := log.Output()
	log.SetOutput(ui.Writer())
	return func() { log.SetOutput(prev) }
}
