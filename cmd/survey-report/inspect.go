package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/service"
)

func newPeriodsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the configured survey periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSurvey(v)
			if err != nil {
				return err
			}
			printPeriods(cmd.OutOrStdout(), newPrintStyles(), cfg)
			return nil
		},
	}
}

// The input flag is read from the command itself; binding it into the shared viper
// instance would shadow generate's flag of the same name.
func newInspectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarise a survey export without generating reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			cfg, err := loadSurvey(v)
			if err != nil {
				return err
			}

			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			set, err := service.ReadResponses(filepath.Base(input), f, cfg)
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}
			summary := service.Summarize(&models.SurveySession{Filename: filepath.Base(input), Responses: set}, cfg, time.Time{})
			printInspect(cmd.OutOrStdout(), newPrintStyles(), summary)
			return nil
		},
	}
	cmd.Flags().StringP("input", "i", "", "Survey export path")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
