// Package cli provides transfer commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/craftdeck/craftdeck/internal/api"
	"github.com/craftdeck/craftdeck/internal/jobs"
	"github.com/craftdeck/craftdeck/internal/progress"
)

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	var remoteDir string

	cmd := &cobra.Command{
		Use:   "upload <local-file> [local-file...]",
		Short: "Upload local files to the server",
		Long: `Upload one or more local files to a directory on the remote server.

Examples:
  # Upload to the server root
  craftdeck upload world-backup.tar.gz

  # Upload into a subdirectory
  craftdeck upload Essentials.jar --dir /plugins`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			for _, localPath := range args {
				if err := uploadOne(GetContext(), client, localPath, remoteDir); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&remoteDir, "dir", "/", "Remote directory to upload into")
	return cmd
}

func uploadOne(ctx context.Context, client *api.Client, localPath, remoteDir string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	bar := progress.NewByteBar()
	bar.Start(info.Size(), "Uploading "+filepath.Base(localPath))

	h, err := jobs.Upload(ctx, client, jobs.UploadSpec{
		Dir:        remoteDir,
		Body:       f,
		Size:       info.Size(),
		OnProgress: bar.Update,
	}, jobBus())
	if err != nil {
		bar.Error(err)
		return err
	}

	return awaitJob(ctx, h, func(err error) {
		if err == nil {
			bar.Finish()
			GetLogger().Info().Str("file", localPath).Msg("upload complete")
		} else {
			bar.Error(err)
		}
	})
}

// newFetchURLCmd creates the 'fetch-url' command.
func newFetchURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch-url <url> <remote-path>",
		Short: "Have the server download a file from a URL",
		Long: `Ask the remote server to fetch a file from a URL and store it at the
given path. The download runs server-side; progress is streamed back.

Examples:
  craftdeck fetch-url https://example.com/mods/worldedit.jar /plugins/worldedit.jar`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}

			ui := progress.NewPercentUI("fetch " + filepath.Base(args[1]))
			restore := redirectLogOutput(ui)
			defer restore()

			h, err := jobs.FetchFromURL(GetContext(), client, args[0], args[1], percentCallbacks(ui), jobBus())
			if err != nil {
				ui.Abort()
				return err
			}
			return awaitJob(GetContext(), h, nil)
		},
	}
	return cmd
}

// awaitJob waits for a job to finish, cancelling it server-side when ctx is
// interrupted. A cancelled job is reported but not treated as a failure.
func awaitJob(ctx context.Context, h *jobs.Handle, done func(error)) error {
	go func() {
		select {
		case <-ctx.Done():
			if err := h.Cancel(context.Background()); err != nil {
				GetLogger().Warn().Err(err).Str("job", h.JobID()).Msg("cancel request failed")
			}
		case <-h.Done():
		}
	}()

	err := h.Wait(context.Background())
	if done != nil {
		done(err)
	}
	if errors.Is(err, jobs.ErrCancelled) {
		GetLogger().Info().Str("job", h.JobID()).Msg("cancelled")
		return nil
	}
	return err
}
