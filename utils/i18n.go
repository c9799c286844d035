package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

var bundle *i18n.Bundle

func init() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	// built-in english defaults; message files loaded by LoadMessageBundle
	// override these
	bundle.AddMessages(language.English,
		&i18n.Message{ID: "chairperson.unassigned", Other: "Chairperson to be assigned"},
		&i18n.Message{ID: "error.internal", Other: "internal server error"},
		&i18n.Message{ID: "error.invalid_parameters", Other: "invalid parameters"},
		&i18n.Message{ID: "error.unknown_requester", Other: "requester identity is missing or not recognized"},
		&i18n.Message{ID: "error.validation", Other: "one or more fields failed validation"},
		&i18n.Message{ID: "error.not_found", Other: "entity not found"},
		&i18n.Message{ID: "error.reviewer_taken", Other: "reviewer id is already registered"},
		&i18n.Message{ID: "error.invalid_transition", Other: "illegal protocol status transition"},
		&i18n.Message{ID: "error.decision_not_allowed", Other: "protocol does not accept decisions in its current status"},
		&i18n.Message{ID: "error.unauthorized_author", Other: "author is not permitted to record this decision"},
	)
}

// LoadMessageBundle loads every translation file from dir into the shared
// bundle. Missing directories are tolerated: the built-in english messages
// remain available.
func LoadMessageBundle(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("dir", dir).Warn("i18n directory not found, using built-in messages")
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		if _, err := bundle.LoadMessageFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// NewLocalizer creates a localizer preferring the given languages, falling
// back to english.
func NewLocalizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, append(langs, language.English.String())...)
}

// Localize resolves a message id in the given language, falling back to the
// id itself so a missing translation never turns into an error path.
func Localize(lang, messageID string) string {
	msg, err := NewLocalizer(lang).Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		log.WithError(err).WithField("message", messageID).Debug("fail to localize message")
		return messageID
	}
	return msg
}
