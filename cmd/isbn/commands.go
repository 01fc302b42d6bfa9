package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bookshare/internal/isbn"
	"bookshare/internal/lookup"
	"bookshare/internal/platform/openlibrary"
)

// errInvalidFound makes the process exit non-zero after every verdict is printed.
var errInvalidFound = errors.New("one or more ISBNs are invalid")

// CheckCmd returns the check command.
func CheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [isbn...]",
		Short: "Validate ISBN-10 and ISBN-13 identifiers",
		Long: `Validate each argument, or each line of stdin when no arguments are given.
Hyphens and whitespace are ignored. Exits with status 1 if any identifier is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")

			inputs := args
			if len(inputs) == 0 {
				lines, err := readLines(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				inputs = lines
			}

			if !check(cmd.OutOrStdout(), inputs, quiet) {
				return errInvalidFound
			}
			return nil
		},
	}
	cmd.Flags().BoolP("quiet", "q", false, "Only print invalid identifiers")
	return cmd
}

func check(w io.Writer, inputs []string, quiet bool) bool {
	validMark := color.New(color.FgHiGreen).Sprint("valid")
	invalidMark := color.New(color.FgRed).Sprint("invalid")

	ok := true
	for _, raw := range inputs {
		kind := isbn.Kind(raw)
		if kind == isbn.Unknown {
			ok = false
			fmt.Fprintf(w, "%-8s %q\n", invalidMark, raw)
			continue
		}
		if !quiet {
			fmt.Fprintf(w, "%-8s %s %s\n", validMark, isbn.Normalize(raw), kind)
		}
	}
	return ok
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// LookupCmd returns the lookup command. newLooker builds the metadata
// service for the configured base URL.
func LookupCmd(newLooker func(baseURL string) lookup.Looker) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [isbn]",
		Short: "Fetch title, author and cover for an ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, _ := cmd.Flags().GetString("base-url")
			asJSON, _ := cmd.Flags().GetBool("json")

			md, err := newLooker(baseURL).Lookup(cmd.Context(), args[0])
			switch {
			case errors.Is(err, lookup.ErrInvalidISBN):
				return fmt.Errorf("%q is not a valid ISBN", args[0])
			case errors.Is(err, lookup.ErrNotFound):
				return fmt.Errorf("no book found for ISBN %s", isbn.Normalize(args[0]))
			case errors.Is(err, lookup.ErrUnavailable):
				return fmt.Errorf("metadata service unavailable: %w", err)
			case err != nil:
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(md)
			}
			printMetadata(out, md)
			return nil
		},
	}
	cmd.Flags().String("base-url", openlibrary.DefaultBaseURL, "Open Library base URL")
	cmd.Flags().Bool("json", false, "Print metadata as JSON")
	return cmd
}

func printMetadata(w io.Writer, md lookup.Metadata) {
	label := color.New(color.FgCyan)
	fmt.Fprintf(w, "%s %s\n", label.Sprint("ISBN:  "), md.ISBN)
	fmt.Fprintf(w, "%s %s\n", label.Sprint("Title: "), md.Title)
	fmt.Fprintf(w, "%s %s\n", label.Sprint("Author:"), md.Author)
	if md.CoverURL != "" {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("Cover: "), md.CoverURL)
	}
	if md.Description != "" {
		fmt.Fprintf(w, "\n%s\n", md.Description)
	}
}
