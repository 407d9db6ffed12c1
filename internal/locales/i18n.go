package locales

import (
	"embed"
	"encoding/json"
	"log"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

var (
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
)

// Init initializes the i18n bundle by loading language files and setting the default language.
func Init(defaultLangCode string) {
	var err error
	defaultLanguage, err = language.Parse(defaultLangCode)
	if err != nil {
		log.Printf("WARN: Failed to parse default language code '%s': %v. Falling back to Russian.", defaultLangCode, err)
		defaultLanguage = language.Russian
	}

	bundle = i18n.NewBundle(defaultLanguage)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	fs, err := localeFS.ReadDir(".")
	if err != nil {
		log.Fatalf("Failed to read embedded locales directory: %v", err)
	}

	loadedFiles := 0
	for _, file := range fs {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".json") {
			if _, err := bundle.LoadMessageFileFS(localeFS, file.Name()); err != nil {
				log.Printf("WARN: Failed to load message file '%s': %v", file.Name(), err)
			} else {
				loadedFiles++
			}
		}
	}
	if loadedFiles == 0 {
		log.Fatalf("No message files loaded from locales/")
	}
}

// GetDefaultLanguageTag returns the configured default language tag.
func GetDefaultLanguageTag() language.Tag {
	if bundle == nil {
		log.Panicln("Attempted to get default language tag before i18n bundle initialization.")
	}
	return defaultLanguage
}

// NewLocalizer creates a localizer for the given language preferences.
func NewLocalizer(langPrefs ...string) *i18n.Localizer {
	if bundle == nil {
		log.Panicln("Attempted to create localizer before i18n bundle initialization.")
	}
	return i18n.NewLocalizer(bundle, langPrefs...)
}

// GetMessage retrieves and formats a message by its ID using the provided localizer.
func GetMessage(localizer *i18n.Localizer, msgID string, templateData map[string]interface{}, pluralCount *int) string {
	config := &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: templateData,
	}
	if pluralCount != nil {
		config.PluralCount = *pluralCount
	}

	localizedMsg, err := localizer.Localize(config)
	if err != nil {
		log.Printf("ERROR: Failed to localize message ID '%s': %v", msgID, err)
		fallback := i18n.NewLocalizer(bundle, defaultLanguage.String())
		if fallbackMsg, fallbackErr := fallback.Localize(config); fallbackErr == nil {
			return fallbackMsg
		}
		return msgID
	}
	return localizedMsg
}
