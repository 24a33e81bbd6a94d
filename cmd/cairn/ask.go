// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cairn-dev/cairn/internal/store"
)

const answerPrompt = `Answer the question using only the context below. If the context does not contain the answer, say so.

Context:
%s

Question: %s`

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the stored documents",
		Long:  "Retrieve the chunks most relevant to the question and have the chat model answer from them.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().IntP("max-results", "n", 5, "number of chunks to retrieve")
	cmd.Flags().Float64("min-score", 0, "minimum similarity score in [0, 1]")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := newOpenAIClient(cfg)
	if err != nil {
		return err
	}

	s, err := openStore(cfg, client)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	question := args[0]
	query, err := client.Embed(cmd.Context(), question)
	if err != nil {
		return err
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	minScore, _ := cmd.Flags().GetFloat64("min-score")

	result, err := s.Search(cmd.Context(), store.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
		MinScore:   minScore,
	})
	if err != nil {
		return err
	}

	var contexts []string
	for _, m := range result.Matches {
		if m.Segment != nil {
			contexts = append(contexts, m.Segment.Text)
		}
	}
	if len(contexts) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No relevant documents found.")
		return err
	}

	answer, err := client.Complete(cmd.Context(), fmt.Sprintf(answerPrompt, strings.Join(contexts, "\n---\n"), question))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
	return err
}
