package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
)

type apiClient struct {
	baseURL string
	timeout time.Duration
	actor   string
}

// apiError is a non-2xx response from the API.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Body)
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actor != "" {
		req.Header.Set("X-Actor-ID", c.actor)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return data, &apiError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	return data, nil
}

func balanceCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := api.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/balance", nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
}

func walletCmd(api *apiClient, op, short string) *cobra.Command {
	var description, reference, idempotencyKey string

	cmd := &cobra.Command{
		Use:   op + " <account-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			body := map[string]any{
				"amount":       amount,
				"description":  description,
				"reference_id": reference,
			}

			data, err := api.do(http.MethodPost, "/api/v1/accounts/"+url.PathEscape(args[0])+"/"+op, body, idempotencyHeader(idempotencyKey))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Entry description")
	cmd.Flags().StringVar(&reference, "reference", "", "Reference ID")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (generated when empty)")

	return cmd
}

func transferCmd(api *apiClient) *cobra.Command {
	var description, idempotencyKey string

	cmd := &cobra.Command{
		Use:   "transfer <from-account> <to-account> <amount>",
		Short: "Move funds between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			body := map[string]any{
				"from_account_id": args[0],
				"to_account_id":   args[1],
				"amount":          amount,
				"description":     description,
			}

			data, err := api.do(http.MethodPost, "/api/v1/transfers", body, idempotencyHeader(idempotencyKey))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Transfer description")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (generated when empty)")

	return cmd
}

func historyCmd(api *apiClient) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "List the transaction history of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			data, err := api.do(http.MethodGet, "/api/v1/accounts/"+url.PathEscape(args[0])+"/history?"+query.Encode(), nil, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")

	return cmd
}

func ledgerCmd(api *apiClient) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := api.do(http.MethodGet, "/api/v1/ledger/consistency", nil, nil)

			// An inconsistent ledger is reported as 409 with the same body.
			var apiErr *apiError
			if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict) {
				return err
			}

			var result struct {
				Consistent   bool   `json:"consistent"`
				TotalBalance string `json:"total_balance"`
				TotalAmount  string `json:"total_history_amount"`
				Difference   string `json:"difference"`
			}
			if err := json.Unmarshal(data, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total balance: %s\n", result.TotalBalance)
			fmt.Fprintf(out, "Total amount:  %s\n", result.TotalAmount)
			fmt.Fprintf(out, "Difference:    %s\n", result.Difference)

			if !result.Consistent {
				fmt.Fprintln(out, "Consistency check FAILED")
				return fmt.Errorf("ledger is inconsistent")
			}

			fmt.Fprintln(out, "Consistency check PASSED")
			return nil
		},
	})

	return ledgerCmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Migrations directory (embedded migrations when empty)")

	log := logger.New(logger.Config{Level: "info", Format: "console", Output: os.Stderr})

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				if databaseURL == "" {
					return fmt.Errorf("--database-url or DATABASE_URL is required")
				}
				return postgres.RunMigrations(databaseURL, migrationsPath, log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				if databaseURL == "" {
					return fmt.Errorf("--database-url or DATABASE_URL is required")
				}
				return postgres.RunMigrationsDown(databaseURL, migrationsPath, log)
			},
		},
	)

	return cmd
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func idempotencyHeader(key string) map[string]string {
	if key == "" {
		key = ulid.Make().String()
	}
	return map[string]string{"Idempotency-Key": key}
}

func printJSON(w io.Writer, data []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		_, err = w.Write(data)
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}
