package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askSources []string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your indexed documents",
	Long: `Answers a question using the indexed documents, grounding the answer
in the retrieved passages and listing the source files it used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc, _, cleanup, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		question := strings.Join(args, " ")
		answer, err := svc.Answer(context.Background(), question, askSources)
		if err != nil {
			return fmt.Errorf("answering question: %w", err)
		}

		fmt.Println(answer.Response)
		if len(answer.Sources) > 0 {
			fmt.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringSliceVar(&askSources, "source", nil, "restrict the answer to these filenames (repeatable)")
	rootCmd.AddCommand(askCmd)
}
