package cli

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/fsnav/fsnav/internal/models"
	"github.com/fsnav/fsnav/internal/navigator"
)

// newPreviewCmd creates the 'preview' command.
func newPreviewCmd() *cobra.Command {
	var (
		password string
		linkOnly bool
	)

	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Print the download link and document preview pages of a file",
		Long: `Print the download link of a file and, when the storage renders
document previews, one image URL per preview page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := GetContext()
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			p := navigator.CleanPath(args[0])
			desc, err := a.files.DescribeEntry(ctx, models.GetRequest{Path: p, Password: password})
			if err != nil {
				return err
			}
			if desc.IsDir {
				return fmt.Errorf("%s is a directory", p)
			}

			dir := path.Dir(p)
			link, err := a.files.DownloadURL(dir, desc.Entry)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, link)
			if linkOnly {
				return nil
			}

			info, err := a.files.PreviewInfo(ctx, p, password)
			if err != nil {
				a.logger.Debug().Err(err).Str("path", p).Msg("No document preview")
				return nil
			}
			urls, err := a.files.PreviewPageURLs(dir, desc.Entry, info.PageNums)
			if err != nil {
				return err
			}
			for i, u := range urls {
				fmt.Fprintf(os.Stdout, "page %d: %s\n", i+1, u)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Directory password")
	cmd.Flags().BoolVar(&linkOnly, "link", false, "Only print the download link")
	return cmd
}
