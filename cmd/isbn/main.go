package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bookshare/internal/cache"
	"bookshare/internal/lookup"
	"bookshare/internal/platform/openlibrary"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "isbn",
		Short:         "Validate ISBNs and preview their book metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(CheckCmd())
	rootCmd.AddCommand(LookupCmd(func(baseURL string) lookup.Looker {
		client := openlibrary.NewClient(openlibrary.Config{
			BaseURL:   baseURL,
			UserAgent: os.Getenv("OPENLIBRARY_USER_AGENT"),
		})
		return lookup.NewService(client, cache.NewMemoryCache(), time.Minute)
	}))

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalidFound) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
