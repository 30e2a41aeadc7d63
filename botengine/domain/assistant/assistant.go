package assistant

import (
	"encoding/json"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
)

// Type clasifica el propósito de un assistant
type Type string

const (
	TypeBiblical Type = "biblical"
	TypeSales    Type = "sales"
	TypeSupport  Type = "support"
)

func (t Type) Valid() bool {
	switch t {
	case TypeBiblical, TypeSales, TypeSupport:
		return true
	}
	return false
}

// IsSupportFamily reports whether the assistant handles product questions.
func (t Type) IsSupportFamily() bool {
	switch t {
	case TypeSupport, TypeSales:
		return true
	case TypeBiblical:
		return false
	}
	return false
}

// Assistant es una entrada del roster configurado por el administrador
type Assistant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AssistantID string   `json:"assistant_id"` // id externo en el proveedor
	Type        Type     `json:"type"`
	Keywords    []string `json:"keywords"`
	Enabled     bool     `json:"enabled"`
}

func (a Assistant) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.AssistantID, validation.Required),
		validation.Field(&a.Type, validation.Required, validation.In(TypeBiblical, TypeSales, TypeSupport)),
	)
}

// Roster es la lista ordenada de assistants disponibles
type Roster struct {
	Assistants         []Assistant `json:"assistants"`
	DefaultAssistantID string      `json:"default_assistant_id"`
}

// Enabled returns enabled assistants in configuration order.
func (r Roster) Enabled() []Assistant {
	out := make([]Assistant, 0, len(r.Assistants))
	for _, a := range r.Assistants {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// ParseRoster decodes the roster setting. Both an object with an
// "assistants" list and a bare array are accepted. Invalid entries are
// dropped with a warning; unparseable input yields an empty roster.
func ParseRoster(raw string) Roster {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Roster{}
	}

	var roster Roster
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &roster.Assistants); err != nil {
			logrus.WithError(err).Warn("[ROUTER] Invalid assistant roster")
			return Roster{}
		}
	} else if err := json.Unmarshal([]byte(raw), &roster); err != nil {
		logrus.WithError(err).Warn("[ROUTER] Invalid assistant roster")
		return Roster{}
	}

	valid := roster.Assistants[:0]
	for _, a := range roster.Assistants {
		a.Type = Type(strings.ToLower(strings.TrimSpace(string(a.Type))))
		if err := a.Validate(); err != nil {
			logrus.WithError(err).WithField("assistant", a.ID).Warn("[ROUTER] Dropping invalid assistant entry")
			continue
		}
		valid = append(valid, a)
	}
	roster.Assistants = valid
	return roster
}
