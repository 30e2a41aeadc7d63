package application

import (
	"strings"

	settingsDomain "github.com/AzielCF/az-devocional/core/settings/domain"
)

// ComposeWelcome une la bienvenida y, si está activo, el menú. Vacío si la
// bienvenida está apagada o sin texto.
func ComposeWelcome(bag settingsDomain.Bag) string {
	if !bag.Bool(settingsDomain.KeyWelcomeEnabled, false) {
		return ""
	}
	welcome := bag.String(settingsDomain.KeyWelcomeMessage)
	if welcome == "" {
		return ""
	}
	parts := []string{welcome}
	if bag.Bool(settingsDomain.KeyMenuEnabled, false) {
		if menu := bag.String(settingsDomain.KeyMenuMessage); menu != "" {
			parts = append(parts, menu)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ReminderDue reports whether count is a positive multiple of every.
func ReminderDue(count int64, every int) bool {
	if every <= 0 || count <= 0 {
		return false
	}
	return count%int64(every) == 0
}
