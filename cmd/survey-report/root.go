package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/pkg/config"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	// Same variables the API reads, so one .env serves both.
	_ = v.BindEnv("survey-config", "SURVEY_CONFIG_PATH")
	_ = v.BindEnv("template", "SURVEY_TEMPLATE_PATH")
	_ = v.BindEnv("pdf-font", "REPORTS_PDF_FONT_PATH")

	root := &cobra.Command{
		Use:   "survey-report",
		Short: "Build RGB survey reports from survey exports",
		Long: `survey-report runs the RGB survey report pipeline locally.

It reads one or more survey exports (.xlsx or .csv), aggregates competency
scores per grade and writes the grade reports, chart workbooks, filled
staff-meeting template and digests into an output directory.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("survey-config", "", "Survey tables YAML (embedded defaults when empty)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log pipeline progress to stderr")
	_ = v.BindPFlag("survey-config", root.PersistentFlags().Lookup("survey-config"))
	_ = v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(newGenerateCmd(v), newPeriodsCmd(v), newInspectCmd(v))
	return root
}

func loadSurvey(v *viper.Viper) (*models.SurveyConfig, error) {
	return config.LoadSurvey(v.GetString("survey-config"))
}

func newLogger(v *viper.Viper) *zap.Logger {
	if !v.GetBool("verbose") {
		return zap.NewNop()
	}
	logr, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logr
}
