package main

import (
	"fmt"
	"strings"

	chatdomain "github.com/boddenberg/spending-insights-go/internal/chat/domain"
	chatservice "github.com/boddenberg/spending-insights-go/internal/chat/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func loadCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load the ledger and report accepted and rejected rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), v)
			if err != nil {
				return err
			}
			if s.json {
				return writeJSON(cmd.OutOrStdout(), s.stats)
			}
			renderStats(cmd.OutOrStdout(), *s.stats)
			return nil
		},
	}
}

func categoriesCmd(v *viper.Viper) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the top spending categories of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), v)
			if err != nil {
				return err
			}
			p, err := s.svc.Period(period)
			if err != nil {
				return err
			}
			cats := s.svc.Categories(cmd.Context(), p)
			if s.json {
				return writeJSON(cmd.OutOrStdout(), cats)
			}
			renderCategories(cmd.OutOrStdout(), p, cats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", "", "period (YYYY-MM, default: current)")
	return cmd
}

func dailyCmd(v *viper.Viper) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show cumulative spending by day of a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), v)
			if err != nil {
				return err
			}
			p, err := s.svc.Period(period)
			if err != nil {
				return err
			}
			points := s.svc.Daily(cmd.Context(), p)
			if s.json {
				return writeJSON(cmd.OutOrStdout(), points)
			}
			renderDaily(cmd.OutOrStdout(), p, points)
			return nil
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", "", "period (YYYY-MM, default: current)")
	return cmd
}

func trendCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Show spending per month across the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), v)
			if err != nil {
				return err
			}
			points := s.svc.Trend(cmd.Context())
			if s.json {
				return writeJSON(cmd.OutOrStdout(), points)
			}
			renderTrend(cmd.OutOrStdout(), points)
			return nil
		},
	}
}

func summaryCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Compare the current and previous periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), v)
			if err != nil {
				return err
			}
			status := s.svc.Status()
			insight := s.svc.Summary(cmd.Context(), status.Current, status.Previous)
			if s.json {
				return writeJSON(cmd.OutOrStdout(), insight)
			}
			renderSummary(cmd.OutOrStdout(), insight)
			return nil
		},
	}
}

func chatCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the spending assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context(), v)
			if err != nil {
				return err
			}
			chat := chatservice.NewChatService(s.svc, chatservice.DefaultStrategies(s.svc), s.logger)
			resp, err := chat.ProcessMessage(cmd.Context(), &chatdomain.ChatRequest{
				Query: strings.Join(args, " "),
			})
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			if s.json {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			renderAnswer(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}
