package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "generalledger-cli",
		Short: "General ledger CLI tool",
		Long:  `A command line interface for interacting with the general ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger domain operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "get [code]",
		Short: "Show a ledger domain",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/ledgers/%s", args[0]))
		},
	})

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	accountCmd.AddCommand(&cobra.Command{
		Use:   "get [domain] [code]",
		Short: "Show an account",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/ledgers/%s/accounts/%s", args[0], args[1]))
		},
	})

	accountCmd.AddCommand(&cobra.Command{
		Use:   "balances [domain] [code]",
		Short: "Show an account's running balances",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/ledgers/%s/accounts/%s/balances", args[0], args[1]))
		},
	})

	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Journal entry operations",
	}

	entryCmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Show a journal entry",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/entries/%s", args[0]))
		},
	})

	rootCmd.AddCommand(ledgerCmd, accountCmd, entryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	fmt.Println(string(body))
}
