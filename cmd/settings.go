package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/AzielCF/az-devocional/botengine/domain/assistant"
	settingsDomain "github.com/AzielCF/az-devocional/core/settings/domain"
	inboundApp "github.com/AzielCF/az-devocional/inbound/application"
	pkgError "github.com/AzielCF/az-devocional/pkg/error"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read or write the dynamic settings used by the webhook",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer StopApp()
		value, err := readSetting(cmd.Context(), settingsSvc, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting value; JSON settings are checked before saving",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer StopApp()
		key, value := strings.TrimSpace(args[0]), args[1]
		if err := checkSettingValue(key, value); err != nil {
			return err
		}
		if err := settingsSvc.Set(cmd.Context(), key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", key)
		return nil
	},
}

type settingReader interface {
	Get(ctx context.Context, key string) (string, error)
}

// readSetting trata una clave vacía o ausente como no encontrada
func readSetting(ctx context.Context, settings settingReader, key string) (string, error) {
	value, err := settings.Get(ctx, strings.TrimSpace(key))
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", pkgError.NotFoundError(fmt.Sprintf("%s: setting not found", key))
	}
	return value, nil
}

// checkSettingValue rechaza rosters o tablas de triggers que el pipeline
// descartaría en silencio.
func checkSettingValue(key, value string) error {
	switch key {
	case settingsDomain.KeyAIAssistants:
		if len(assistant.ParseRoster(value).Assistants) == 0 {
			return pkgError.ValidationError(fmt.Sprintf("%s: no valid assistants in value", key))
		}
	case settingsDomain.KeyAITriggerWords:
		if len(inboundApp.ParseTriggerTable(value)) == 0 {
			return pkgError.ValidationError(fmt.Sprintf("%s: expected a JSON object of intent -> tokens", key))
		}
	}
	return nil
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
