package main

import (
	"fmt"
	"strings"

	"github.com/divreminder/divreminder/llm"
	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	var providerName string
	var raw bool

	cmd := &cobra.Command{
		Use:   "prompt <text...>",
		Short: "Send a prompt to OpenAI or Gemini using the stored api key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := llm.ParseProvider(providerName)
			if err != nil {
				return err
			}
			answer, err := app.SendPrompt(cmd.Context(), provider, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if !raw {
				answer = renderMarkdown(answer)
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&providerName, "provider", "p", string(llm.ProviderOpenAI), "openai or gemini")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the answer without markdown rendering")
	return cmd
}
