package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/edificio/internal/backup"
	"github.com/josh-kwaku/edificio/internal/format"
)

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupRunCmd)
	backupCmd.AddCommand(backupStatusCmd)
	backupCmd.AddCommand(backupHistoryCmd)
	backupCmd.AddCommand(backupDiagnoseCmd)

	backupRunCmd.Flags().StringP("path", "p", "", "Folder to write the backup to (default: the Google Drive folder)")
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the SQLite database",
	Long: `Copy the SQLite database file to a folder, by default the backup folder
inside Google Drive Desktop. Backups are not available on postgres.`,
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Take a backup now",
	Args:  cobra.NoArgs,
	RunE:  runBackupRun,
}

func runBackupRun(cmd *cobra.Command, args []string) error {
	a, err := appFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	dir, _ := cmd.Flags().GetString("path")
	var res *backup.Result
	if dir != "" {
		res, err = a.backups.ToPath(cmd.Context(), dir)
	} else {
		res, err = a.backups.ToDrive(cmd.Context())
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backup written to %s (%d bytes)\n", res.Path, res.Size)
	return nil
}

var backupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether Google Drive Desktop was detected",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		st, err := a.backups.DriveStatus()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !st.Detected {
			fmt.Fprintln(out, "Google Drive Desktop not detected")
			return nil
		}
		fmt.Fprintf(out, "drive:  %s\nfolder: %s\n", st.Path, st.BackupFolder)
		return nil
	},
}

var backupHistoryCmd = &cobra.Command{
	Use:   "history [DIR]",
	Short: "List the backups in a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		dir := a.cfg.BackupDir
		if len(args) == 1 {
			dir = args[0]
		} else if st, err := a.backups.DriveStatus(); err == nil && st.Detected {
			dir = st.BackupFolder
		}
		if dir == "" {
			return fmt.Errorf("no backup folder: pass DIR or set BACKUP_DIR")
		}

		entries, err := a.backups.History(dir)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDATE\tSIZE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, format.DateTime(e.Date), e.Size)
		}
		return tw.Flush()
	},
}

var backupDiagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "List every path probed for Google Drive Desktop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromFlags(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		for _, p := range a.backups.Diagnostics() {
			mark := "missing"
			if p.Exists {
				mark = "found"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", mark, p.Path)
		}
		return nil
	},
}

func appFromFlags(cmd *cobra.Command) (*app, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, logger)
}
