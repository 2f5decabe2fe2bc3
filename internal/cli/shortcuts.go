package cli

import (
	"github.com/spf13/cobra"
)

// AddShortcuts adds shortcut commands to the root command.
// Shortcuts provide convenient aliases for commonly-used operations.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newArchiveShortcut())
	rootCmd.AddCommand(newRestoreShortcut())
}

// newArchiveShortcut creates the 'archive' shortcut command.
// Shortcut for: transition archive
func newArchiveShortcut() *cobra.Command {
	cmd := newArchiveCmd()
	cmd.Short = "Archive files (shortcut for 'transition archive')"
	return cmd
}

// newRestoreShortcut creates the 'restore' shortcut command.
// Shortcut for: transition restore
func newRestoreShortcut() *cobra.Command {
	cmd := newRestoreCmd()
	cmd.Short = "Restore archived files (shortcut for 'transition restore')"
	return cmd
}
