package main

import (
	"fmt"
	"strings"

	"github.com/divreminder/divreminder/domain"
	"github.com/divreminder/divreminder/llm"
	"github.com/spf13/cobra"
)

func newApiKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage language model api keys",
	}

	set := &cobra.Command{
		Use:   "set <provider> <key>",
		Short: "Store the key of a provider, replacing the previous one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := llm.ParseProvider(args[0])
			if err != nil {
				return err
			}
			key := strings.TrimSpace(args[1])
			if key == "" {
				return fmt.Errorf("key cannot be empty")
			}
			if err := app.Repo.UpsertApiKey(&domain.ApiKey{Provider: string(provider), Key: key}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s key\n", provider.DisplayName())
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored keys, masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := app.Repo.GetApiKeys()
			if err != nil {
				return err
			}
			model, err := app.Repo.GetOpenAIModel()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []string{k.Provider, maskKey(k.Key)})
			}
			printTable(cmd.OutOrStdout(), []string{"Provider", "Key"}, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "OpenAI model: %s\n", model)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove the key of a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := llm.ParseProvider(args[0])
			if err != nil {
				return err
			}
			return app.Repo.DeleteApiKey(string(provider))
		},
	}

	model := &cobra.Command{
		Use:   "model [name]",
		Short: "Show or set the OpenAI model used for prompts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := app.Repo.SetOpenAIModel(strings.TrimSpace(args[0])); err != nil {
					return err
				}
			}
			current, err := app.Repo.GetOpenAIModel()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), current)
			return nil
		},
	}

	cmd.AddCommand(set, list, del, model)
	return cmd
}

// maskKey keeps the first and last four characters of long keys.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
