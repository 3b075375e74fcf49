package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"little_library/library"
	"little_library/logger"
	"little_library/utils"
)

const importLookups = 4

type importResult struct {
	isbn string
	cand library.Candidate
	err  error
}

// readISBNs returns one entry per non-blank line. Lines starting with # are
// comments.
func readISBNs(path string) ([]string, error) {
	lines, err := utils.ReadTextLines(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

// lookupAll resolves each ISBN to its first candidate. Lookup errors are kept
// per entry and never cancel the others.
func (a *app) lookupAll(ctx context.Context, isbns []string) []importResult {
	results := make([]importResult, len(isbns))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(importLookups)
	for i, isbn := range isbns {
		i, isbn := i, isbn
		g.Go(func() error {
			results[i].isbn = isbn
			cands, err := a.ctrl.Search(ctx, isbn)
			switch {
			case err != nil:
				results[i].err = err
			case len(cands) == 0:
				results[i].err = fmt.Errorf("no match for %s", isbn)
			default:
				results[i].cand = cands[0]
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func newImportCmd(a *app) *cobra.Command {
	var genre string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add every ISBN listed in a file (one per line)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isbns, err := readISBNs(args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			if len(isbns) == 0 {
				return fmt.Errorf("import: %s lists no ISBNs: %w", args[0], library.ErrValidationFailed)
			}

			out := cmd.OutOrStdout()
			added, failed := 0, 0
			// Adds run one at a time so the server sees them in file order.
			for _, r := range a.lookupAll(cmd.Context(), isbns) {
				if r.err != nil {
					failed++
					fmt.Fprintf(out, "%-15s FAILED  %v\n", r.isbn, r.err)
					continue
				}
				shelf := genre
				if shelf == "" {
					shelf = r.cand.Genre
				}
				book, err := a.ctrl.Add(cmd.Context(), r.cand, shelf)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%-15s FAILED  %v\n", r.isbn, err)
					continue
				}
				added++
				fmt.Fprintf(out, "%-15s ADDED   %s\n", r.isbn, book.Title)
			}

			logger.Info("import finished", "file", args[0], "added", added, "failed", failed)
			fmt.Fprintf(out, "\nImport complete: %d added, %d failed\n", added, failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&genre, "genre", "", "genre shelf for every book (defaults to each book's genre)")
	return cmd
}
