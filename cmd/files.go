package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the indexed documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		_, docs, cleanup, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		list, err := docs.List(context.Background())
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No documents indexed yet. Run `docchat ingest` to add some.")
			return nil
		}

		for _, doc := range list {
			fmt.Printf("%-40s %10d bytes  %s\n", doc.Filename, doc.Size, doc.UploadedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <filename>",
	Short: "Remove a document from the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc, docs, cleanup, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := context.Background()
		filename := args[0]

		if err := docs.Delete(ctx, filename); err != nil {
			return fmt.Errorf("removing %s: %w", filename, err)
		}
		if err := svc.Delete(ctx, filename); err != nil {
			return fmt.Errorf("removing %s from the index: %w", filename, err)
		}

		fmt.Printf("Removed %s\n", filename)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(rmCmd)
}
