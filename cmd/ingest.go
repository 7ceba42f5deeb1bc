package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/nhanvu/docchat/internal/docstore"
	"github.com/nhanvu/docchat/internal/extract"
	"github.com/nhanvu/docchat/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pattern>...",
	Short: "Index documents from the filesystem",
	Long: `Extracts text from the files matching the given glob patterns and
indexes them for retrieval. Patterns support ** for recursive matching,
e.g. "docs/**/*.pdf". Files with unsupported extensions are skipped.
Re-ingesting a filename replaces its previous version in the index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var files []string
		seen := make(map[string]bool)
		for _, pattern := range args {
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil || info.IsDir() {
					continue
				}
				ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(match), "."))
				if !cfg.AllowedExtension(ext) {
					if verbose {
						fmt.Fprintf(os.Stderr, "skipping %s: unsupported extension\n", match)
					}
					continue
				}
				if !seen[match] {
					seen[match] = true
					files = append(files, match)
				}
			}
		}

		if len(files) == 0 {
			return fmt.Errorf("no supported files matched the given patterns")
		}

		svc, docs, cleanup, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := context.Background()
		reporter := progress.NewReporter()
		reporter.Start(len(files))

		indexed, failed := 0, 0
		for i, path := range files {
			filename := filepath.Base(path)
			reporter.Update(i+1, filename)

			if err := ingestFile(ctx, svc, docs, path, filename); err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "failed to index %s: %v\n", path, err)
				continue
			}
			indexed++
		}
		reporter.Finish()

		fmt.Fprintf(os.Stderr, "Indexed %d document(s)", indexed)
		if failed > 0 {
			fmt.Fprintf(os.Stderr, ", %d failed", failed)
		}
		fmt.Fprintln(os.Stderr)
		return nil
	},
}

// ingestFile indexes one file: extract, replace any previous version,
// index and register.
func ingestFile(ctx context.Context, svc ragPipeline, docs *docstore.Store, path, filename string) error {
	text, err := extract.Text(path)
	if err != nil {
		return err
	}

	exists, err := docs.Exists(ctx, filename)
	if err != nil {
		return err
	}
	if exists {
		if err := svc.Delete(ctx, filename); err != nil {
			return fmt.Errorf("removing previous version: %w", err)
		}
	}

	if err := svc.Ingest(ctx, text, filename); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return docs.Save(ctx, docstore.Document{
		Filename: filename,
		Size:     info.Size(),
		Text:     text,
	})
}

// ragPipeline is the slice of the pipeline ingestFile needs, split out
// so tests can substitute it.
type ragPipeline interface {
	Ingest(ctx context.Context, text, filename string) error
	Delete(ctx context.Context, filename string) error
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
