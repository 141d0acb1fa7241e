// Command modelcheck lists the Gemini models usable with GOOGLE_API_KEY.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/startera/internal/ai"
)

var (
	showAll bool
	baseURL string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "modelcheck",
	Short:         "Check which Gemini models the configured key can use",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List models supporting generateContent",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := os.Getenv("GOOGLE_API_KEY")
		if key == "" {
			return errors.New("GOOGLE_API_KEY is not set")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		models, err := ai.ListModels(ctx, key, baseURL, showAll)
		if err != nil {
			return err
		}
		if len(models) == 0 {
			return errors.New("no model supports generateContent for this key")
		}
		w := cmd.OutOrStdout()
		for _, m := range models {
			marker := " "
			if m.Generative {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %-40s %s\n", marker, m.Name, m.DisplayName)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&showAll, "all", false, "include models without generateContent")
	listCmd.Flags().StringVar(&baseURL, "base-url", "", "override the API endpoint")
	listCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.AddCommand(listCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "modelcheck:", err)
		os.Exit(1)
	}
}
