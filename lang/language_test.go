package lang

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLocale(t *testing.T) {
	t.Cleanup(func() { SetLocale(LocaleEnglish) })

	assert.False(t, SetLocale("fr"))
	assert.Equal(t, LocaleEnglish, CurrentLocale())

	assert.True(t, SetLocale(LocaleChinese))
	assert.Equal(t, "我的书架", Active().Library.Title)
	assert.Equal(t, "共3本", BookCount(3))
	assert.Equal(t, LocaleEnglish, NextLocale())
}

func TestFormatters(t *testing.T) {
	SetLocale(LocaleEnglish)
	assert.Equal(t, "3 books", BookCount(3))
	assert.Equal(t, `Added "Dune" to your library`, Added("Dune"))
	assert.Equal(t, "Remove failed: boom", RemoveFailed(errors.New("boom")))
	assert.Equal(t, "Language set to Chinese", LanguageChanged(LocaleChinese))
	assert.Equal(t, LocaleChinese, NextLocale())
}

// Every locale fills every string so no screen renders blank text.
func TestTranslationsComplete(t *testing.T) {
	for loc, s := range translations {
		checkFilled(t, string(loc), reflect.ValueOf(*s))
	}
}

func checkFilled(t *testing.T, path string, v reflect.Value) {
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			checkFilled(t, path+"."+v.Type().Field(i).Name, v.Field(i))
		}
	case reflect.String:
		assert.NotEmpty(t, v.String(), path)
	case reflect.Map:
		assert.Equal(t, len(availableLocales), v.Len(), path)
	}
}
