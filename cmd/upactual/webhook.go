package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/grdmnt/upbank-actual/pkg/config"
	"github.com/grdmnt/upbank-actual/pkg/signature"
	"github.com/grdmnt/upbank-actual/pkg/up"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage Up webhook subscriptions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var webhookCreateCmd = &cobra.Command{
	Use:   "create <url> [description...]",
	Short: "Register a webhook subscription with Up",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(func(c *config.Config) error { return c.ValidateUp() })
		if err != nil {
			return err
		}

		webhookURL := args[0]
		description := strings.Join(args[1:], " ")

		wh, err := upClient(cfg, newLogger()).CreateWebhook(webhookURL, description)
		if err != nil {
			return err
		}

		fmt.Println("Created Up webhook:")
		fmt.Printf("- id: %s\n", wh.ID)
		fmt.Printf("- url: %s\n", wh.Attributes.URL)
		if wh.Attributes.Description != "" {
			fmt.Printf("- description: %s\n", wh.Attributes.Description)
		}
		if wh.Attributes.CreatedAt != "" {
			fmt.Printf("- createdAt: %s\n", wh.Attributes.CreatedAt)
		}
		if wh.Attributes.SecretKey != "" {
			fmt.Println("\nIMPORTANT: Save this secret now. It is only shown once.")
			fmt.Printf("UP_WEBHOOK_SECRET=%s\n", wh.Attributes.SecretKey)
		} else {
			fmt.Println("\nNote: secretKey was not present in the response; it is only returned on creation.")
		}
		return nil
	},
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List Up webhook subscriptions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := buildConfig(func(c *config.Config) error { return c.ValidateUp() })
		if err != nil {
			return err
		}

		webhooks, err := upClient(cfg, newLogger()).ListWebhooks()
		if err != nil {
			return err
		}
		if len(webhooks) == 0 {
			fmt.Println("No webhooks configured.")
			return nil
		}

		fmt.Println("Up webhooks:")
		for _, wh := range webhooks {
			fmt.Println(idStyle.Render(fmt.Sprintf("- id=%s", wh.ID)))
			fmt.Printf("  url=%s\n", wh.Attributes.URL)
			if wh.Attributes.Description != "" {
				fmt.Printf("  description=%s\n", wh.Attributes.Description)
			}
			if wh.Attributes.CreatedAt != "" {
				fmt.Printf("  createdAt=%s\n", wh.Attributes.CreatedAt)
			}
		}
		return nil
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete <webhook-id>",
	Short: "Delete an Up webhook subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(func(c *config.Config) error { return c.ValidateUp() })
		if err != nil {
			return err
		}

		if err := upClient(cfg, newLogger()).DeleteWebhook(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted Up webhook: %s\n", args[0])
		return nil
	},
}

var webhookPingCmd = &cobra.Command{
	Use:   "ping <webhook-id>",
	Short: "Ask Up to deliver a PING event to a subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(func(c *config.Config) error { return c.ValidateUp() })
		if err != nil {
			return err
		}

		event, err := upClient(cfg, newLogger()).PingWebhook(args[0])
		if err != nil {
			return err
		}

		fmt.Println("Sent PING to webhook. Event returned:")
		pp.Println(event)
		fmt.Println("\nCheck your receiver logs or Up delivery logs if no request arrived.")
		return nil
	},
}

var (
	testEvent string
	testURL   string
)

var testCmd = &cobra.Command{
	Use:   "test <transaction-id>",
	Short: "Synthesize and sign a webhook delivery against a local server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(func(c *config.Config) error {
			if c.UpWebhookSecret == "" {
				return &config.MissingError{Names: []string{"UP_WEBHOOK_SECRET"}}
			}
			return nil
		})
		if err != nil {
			return err
		}

		target := testURL
		if target == "" {
			target = fmt.Sprintf("http://localhost:%s/webhook/up", cfg.Port)
		}

		payload := map[string]any{
			"data": map[string]any{
				"type": "webhook-events",
				"id":   "test-" + uuid.NewString(),
				"attributes": map[string]any{
					"eventType": testEvent,
					"createdAt": time.Now().UTC().Format(time.RFC3339),
				},
				"relationships": map[string]any{
					"webhook": map[string]any{
						"data": map[string]any{"type": "webhooks", "id": "test"},
					},
					"transaction": map[string]any{
						"data": map[string]any{"type": "transactions", "id": args[0]},
					},
				},
			},
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Up-Authenticity-Signature", signature.Sign(raw, cfg.UpWebhookSecret))

		res, err := (&http.Client{Timeout: 15 * time.Second}).Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer res.Body.Close()

		body, _ := io.ReadAll(res.Body)
		fmt.Printf("Status: %d\n", res.StatusCode)

		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err == nil {
			pp.Println(decoded)
		} else {
			fmt.Printf("Response: %s\n", body)
		}
		return nil
	},
}

func init() {
	webhookCmd.AddCommand(webhookCreateCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
	webhookCmd.AddCommand(webhookPingCmd)

	testCmd.Flags().StringVar(&testEvent, "event", up.EventTransactionCreated, "Event type to deliver")
	testCmd.Flags().StringVar(&testURL, "url", "", "Webhook endpoint (default http://localhost:$PORT/webhook/up)")
}
