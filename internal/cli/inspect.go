package cli

import (
	"fmt"
	"io"
	"time"

	nfs "github.com/CageChen/nativefs/internal/fs"
	"github.com/spf13/cobra"
)

var requireNative bool

func init() {
	for _, c := range []*cobra.Command{infoCmd, lsCmd, readlinkCmd} {
		c.Flags().BoolVar(&requireNative, "native", false, "Fail unless the native module is loaded")
		rootCmd.AddCommand(c)
	}
}

// fileSystemFor returns the FileSystem rooted at path.
func fileSystemFor(path string) (nfs.FileSystem, error) {
	if requireNative {
		b, err := module.Instance()
		if err != nil {
			return nil, err
		}
		return nfs.NewNativeFS(b, path), nil
	}
	return nfs.Select(module, path), nil
}

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Show the metadata of a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, err := fileSystemFor(args[0])
		if err != nil {
			return err
		}
		info, err := fsys.Stat("")
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:     %s\n", info.Name)
		printer.Fprintf(out, "Size:     %d bytes\n", info.Size)
		fmt.Fprintf(out, "Attrs:    %s\n", info.Attrs)
		fmt.Fprintf(out, "Modified: %s\n", formatTime(info.ModTime))
		if !info.Created.IsZero() {
			fmt.Fprintf(out, "Created:  %s\n", formatTime(info.Created))
		}
		if !info.Accessed.IsZero() {
			fmt.Fprintf(out, "Accessed: %s\n", formatTime(info.Accessed))
		}
		fmt.Fprintf(out, "Backend:  %s\n", fsys.Name())
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <dir>",
	Short: "List the children of a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, err := fileSystemFor(args[0])
		if err != nil {
			return err
		}
		entries, err := fsys.ReadDir("")
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		var total int64
		for _, e := range entries {
			size := int64(0)
			if !e.IsDir {
				if info, err := fsys.Stat(e.Name); err == nil {
					size = info.Size
				}
			}
			total += size
			printEntry(out, e, size)
		}
		printer.Fprintf(out, "%d entries, %d bytes (%s)\n", len(entries), total, fsys.Name())
		return nil
	},
}

var readlinkCmd = &cobra.Command{
	Use:   "readlink <path>",
	Short: "Print the final target of a symbolic link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fsys, err := fileSystemFor(args[0])
		if err != nil {
			return err
		}
		target, err := fsys.Readlink("")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), target)
		return nil
	},
}

func printEntry(w io.Writer, e nfs.DirEntry, size int64) {
	name := e.Name
	if e.IsDir {
		name += "/"
	}
	printer.Fprintf(w, "%-16s %14d  %s\n", e.Attrs, size, name)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}
