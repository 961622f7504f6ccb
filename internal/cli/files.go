// Package cli provides directory and file commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/craftdeck/craftdeck/internal/api"
	"github.com/craftdeck/craftdeck/internal/fsmodel"
)

// newLsCmd creates the 'ls' command.
func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory on the server",
		Long: `List the contents of a directory on the remote server.

Examples:
  # List the server root
  craftdeck ls

  # List a subdirectory
  craftdeck ls /plugins`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}

			client, err := buildClient()
			if err != nil {
				return err
			}
			listing, err := client.List(GetContext(), path)
			if err != nil {
				return err
			}
			printListing(cmd.OutOrStdout(), listing)
			return nil
		},
	}
	return cmd
}

func printListing(out io.Writer, listing fsmodel.Listing) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tSIZE\tMODIFIED")
	for _, e := range listing.Entries {
		size := "-"
		if !e.IsDirectory {
			size = formatSize(e.Size)
		}
		modified := "-"
		if !e.ModifiedAt.IsZero() {
			modified = e.ModifiedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.TypeLabel, size, modified)
	}
	w.Flush()
}

// formatSize renders a byte count in binary units.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// newSearchCmd creates the 'search' command.
func newSearchCmd() *cobra.Command {
	var filenameOnly bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search file contents and names on the server",
		Long: `Search files on the remote server.

Examples:
  # Search file contents
  craftdeck search "level-seed"

  # Match file names only
  craftdeck search level.dat --filename-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			entries, err := client.NewSearcher().Search(GetContext(), args[0], filenameOnly)
			if errors.Is(err, api.ErrSuperseded) {
				return nil
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			printListing(cmd.OutOrStdout(), fsmodel.Listing{Entries: entries})
			return nil
		},
	}

	cmd.Flags().BoolVar(&filenameOnly, "filename-only", false, "Match entry names instead of contents")
	return cmd
}

// newCatCmd creates the 'cat' command.
func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a remote file to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			content, err := client.ReadFile(GetContext(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
}

// newWriteCmd creates the 'write' command.
func newWriteCmd() *cobra.Command {
	var fromFile string

	cmd := &cobra.Command{
		Use:   "write <path> [content]",
		Short: "Replace a remote file's contents",
		Long: `Replace the contents of a remote file with the given text.

Content comes from the second argument, from --from-file, or from stdin
when neither is given.

Examples:
  craftdeck write server.properties "motd=Welcome"
  craftdeck write config.yml --from-file ./config.yml
  cat banner.txt | craftdeck write motd.txt`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			switch {
			case len(args) == 2:
				content = args[1]
			case fromFile != "":
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read %s: %w", fromFile, err)
				}
				content = string(data)
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				content = string(data)
			}

			client, err := buildClient()
			if err != nil {
				return err
			}
			return client.WriteFile(GetContext(), args[0], content)
		},
	}

	cmd.Flags().StringVar(&fromFile, "from-file", "", "Read content from a local file")
	return cmd
}

// newMkdirCmd creates the 'mkdir' command.
func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			return client.Create(GetContext(), args[0], true)
		},
	}
}

// newTouchCmd creates the 'touch' command.
func newTouchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "touch <path>",
		Short: "Create an empty file on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			return client.Create(GetContext(), args[0], false)
		},
	}
}

// newRmCmd creates the 'rm' command.
func newRmCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <path> [path...]",
		Short: "Delete files or directories on the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirmDelete(args) {
				return fmt.Errorf("aborted (pass --force to skip confirmation)")
			}
			client, err := buildClient()
			if err != nil {
				return err
			}
			return client.Delete(GetContext(), args)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	return cmd
}

// newCpCmd creates the 'cp' command.
func newCpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cp <source> [source...] <dest-dir>",
		Short: "Copy entries into a directory on the server",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			sources, dest := args[:len(args)-1], args[len(args)-1]
			return client.Copy(GetContext(), sources, dest)
		},
	}
}

// newMvCmd creates the 'mv' command.
func newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <source> [source...] <dest-dir>",
		Short: "Move entries into a directory on the server",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			sources, dest := args[:len(args)-1], args[len(args)-1]
			return client.Move(GetContext(), sources, dest)
		},
	}
}

// newRenameCmd creates the 'rename' command.
func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-path> <new-path>",
		Short: "Rename a file or directory on the server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			return client.Rename(GetContext(), args[0], args[1])
		},
	}
}

// newDownloadURLCmd creates the 'download-url' command.
func newDownloadURLCmd() *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "download-url <entry> [entry...]",
		Short: "Print a browser-navigable download URL for entries",
		Long: `Print the URL that downloads the given entries. The panel streams the
download directly, so the URL can be opened in a browser or passed to
curl.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), client.DownloadURL(args, cwd))
			return nil
		},
	}

	cmd.Flags().StringVar(&cwd, "cwd", "/", "Directory the entries are relative to")
	return cmd
}
