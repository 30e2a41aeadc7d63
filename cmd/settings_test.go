package cmd

import (
	"context"
	"errors"
	"net/http"
	"testing"

	settingsDomain "github.com/AzielCF/az-devocional/core/settings/domain"
	pkgError "github.com/AzielCF/az-devocional/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSettings map[string]string

func (m mapSettings) Get(_ context.Context, key string) (string, error) {
	if key == "broken" {
		return "", errors.New("db down")
	}
	return m[key], nil
}

func TestCheckSettingValue(t *testing.T) {
	assert.NoError(t, checkSettingValue(settingsDomain.KeyWelcomeMessage, "qualquer texto"))

	assert.NoError(t, checkSettingValue(settingsDomain.KeyAIAssistants,
		`[{"id":"a1","name":"Pastor","assistant_id":"asst_1","type":"biblical","enabled":true}]`))
	assert.Error(t, checkSettingValue(settingsDomain.KeyAIAssistants, `[{"id":"a1","type":"unknown"}]`))
	assert.Error(t, checkSettingValue(settingsDomain.KeyAIAssistants, `not json`))

	assert.NoError(t, checkSettingValue(settingsDomain.KeyAITriggerWords, `{"prayer_request":["ore por mim"]}`))
	assert.Error(t, checkSettingValue(settingsDomain.KeyAITriggerWords, `["ore"]`))
}

func TestCheckSettingValue_ReturnsValidationError(t *testing.T) {
	err := checkSettingValue(settingsDomain.KeyAITriggerWords, `["ore"]`)

	var valErr pkgError.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "VALIDATION_ERROR", valErr.ErrCode())
	assert.Equal(t, http.StatusBadRequest, valErr.StatusCode())
}

func TestReadSetting(t *testing.T) {
	settings := mapSettings{settingsDomain.KeyReminderEvery: "3"}

	value, err := readSetting(context.Background(), settings, " "+settingsDomain.KeyReminderEvery+" ")
	require.NoError(t, err)
	assert.Equal(t, "3", value)

	_, err = readSetting(context.Background(), settings, settingsDomain.KeyMenuMessage)
	var notFound pkgError.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode())

	_, err = readSetting(context.Background(), settings, "broken")
	assert.EqualError(t, err, "db down")
}
