package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"little_library/lang"
	"little_library/library"
	"little_library/logger"
)

const (
	colID     = 6
	colTitle  = 40
	colAuthor = 24
	colShelf  = 14
	wrapWidth = 72
)

// cell truncates and pads s to exactly width display columns.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func printBooks(w io.Writer, books []library.Book) {
	fmt.Fprintf(w, "%s %s %s %s\n", cell("ID", colID), cell("Title", colTitle), cell("Author", colAuthor), "Shelf")
	fmt.Fprintln(w, strings.Repeat("-", colID+colTitle+colAuthor+colShelf+3))
	for _, b := range books {
		fmt.Fprintf(w, "%s %s %s %s\n",
			cell(b.ID, colID), cell(b.Title, colTitle), cell(b.Author, colAuthor), library.Label(b.Shelf()))
	}
	fmt.Fprintln(w, lang.BookCount(len(books)))
}

func printCandidates(w io.Writer, cands []library.Candidate, owned func(string) bool) {
	for i, c := range cands {
		mark := " "
		if owned(c.ServerID) {
			mark = "✓"
		}
		parts := []string{c.Title, c.Author}
		if c.PublicationYear > 0 {
			parts = append(parts, strconv.Itoa(c.PublicationYear))
		}
		if isbn := c.BestISBN(); isbn != "" {
			parts = append(parts, isbn)
		}
		fmt.Fprintf(w, "%2d. %s %s\n", i+1, mark, strings.Join(parts, " | "))
	}
}

// loadQuietly loads the library for ownership marks. A failure only costs
// the marks, so it is logged and not returned.
func (a *app) loadQuietly(ctx context.Context) {
	if err := a.ctrl.Load(ctx); err != nil {
		logger.Warn("library load failed", "error", err)
	}
}

func (a *app) findBook(id string) (library.Book, error) {
	for _, b := range a.ctrl.Snapshot().Books {
		if b.ID == id {
			return b, nil
		}
	}
	return library.Book{}, fmt.Errorf("book %s is not in your library", id)
}

func newListCmd(a *app) *cobra.Command {
	var genre, query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the books in your library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			facet := library.FacetAll
			if strings.TrimSpace(genre) != "" {
				facet = library.Canonicalize(genre)
			}
			// Filter directly: an unknown genre lists nothing rather than
			// falling back to every shelf.
			books := a.ctrl.Snapshot().Books
			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Your library is empty.")
				return nil
			}
			printBooks(cmd.OutOrStdout(), library.Filter(books, query, facet))
			return nil
		},
	}
	cmd.Flags().StringVar(&genre, "genre", "", "only books on this genre shelf")
	cmd.Flags().StringVar(&query, "query", "", "only titles or authors containing this text")
	return cmd
}

func newFacetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the genre shelves in your library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			view := a.ctrl.Snapshot()
			for _, f := range view.Facets {
				n := len(library.Filter(view.Books, "", f.Key))
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d\n", cell(f.Label, 20), cell(f.Key, 20), n)
			}
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <isbn|title>",
		Short: "Look up books to add",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.loadQuietly(cmd.Context())
			cands, err := a.ctrl.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(cands) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), lang.Active().Add.NoResults)
				return nil
			}
			printCandidates(cmd.OutOrStdout(), cands, a.ctrl.InLibrary)
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var (
		pick       int
		genre, age string
	)
	cmd := &cobra.Command{
		Use:   "add <isbn|title>",
		Short: "Look up a book and add it to your library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cands, err := a.ctrl.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(cands) == 0 {
				return fmt.Errorf("add: %s", lang.Active().Add.NoResults)
			}
			if pick < 1 || pick > len(cands) {
				return fmt.Errorf("add: --pick must be between 1 and %d: %w", len(cands), library.ErrValidationFailed)
			}
			cand := cands[pick-1]
			if genre == "" {
				genre = cand.Genre
			}

			book, err := a.ctrl.AddToShelves(cmd.Context(), cand, genre, age)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), lang.Added(book.Title))
			if book.ID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "id %s, shelf %s\n", book.ID, library.Label(book.Shelf()))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pick, "pick", 1, "which search result to add (1-based)")
	cmd.Flags().StringVar(&genre, "genre", "", "genre shelf (defaults to the book's genre)")
	cmd.Flags().StringVar(&age, "age", "", "age shelf")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a book from your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			a.loadQuietly(cmd.Context())
			title := id
			if b, err := a.findBook(id); err == nil {
				title = b.Title
			}
			if err := a.ctrl.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), lang.Removed(title))
			return nil
		},
	}
}

func newRecommendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <id>",
		Short: "Suggest books similar to one in your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			book, err := a.findBook(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			rec, err := a.ctrl.Recommend(cmd.Context(), book)
			if err != nil {
				return err
			}
			printRecommendation(cmd.OutOrStdout(), book, rec, a.ctrl.InLibrary)
			return nil
		},
	}
}

func printRecommendation(w io.Writer, book library.Book, rec library.Recommendation, owned func(string) bool) {
	texts := lang.Active().Details
	fmt.Fprintf(w, "%s | %s\n\n", book.Title, book.Author)
	if rec.AgeRecommendation != "" {
		fmt.Fprintln(w, lang.AgeRecommendation(rec.AgeRecommendation))
	}
	if rec.ReadingLevel != "" {
		fmt.Fprintf(w, "%s: %s\n", texts.ReadingLevel, rec.ReadingLevel)
	}
	if len(rec.Themes) > 0 {
		fmt.Fprintf(w, "%s: %s\n", texts.Themes, strings.Join(rec.Themes, ", "))
	}
	if r := strings.TrimSpace(rec.Reasoning); r != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, wordwrap.String(r, wrapWidth))
	}
	fmt.Fprintf(w, "\n%s:\n", texts.Recommendations)
	if len(rec.Similar) == 0 {
		fmt.Fprintln(w, texts.NoRecommendation)
		return
	}
	printCandidates(w, rec.Similar, owned)
}
