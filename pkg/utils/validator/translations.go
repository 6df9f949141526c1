package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// registerCustomTranslations registers translations for custom validation rules.
func (v *Validator) registerCustomTranslations() {
	enTrans := v.GetTranslator(LangEN)
	if enTrans != nil {
		v.registerEnglishTranslations(enTrans)
	}

	zhTrans := v.GetTranslator(LangZH)
	if zhTrans != nil {
		v.registerChineseTranslations(zhTrans)
	}
}

// registerEnglishTranslations registers English translations for custom rules.
func (v *Validator) registerEnglishTranslations(trans ut.Translator) {
	translations := map[string]string{
		TagUsername:   "{0} must start with a letter and contain only letters, numbers, and underscores (3-32 characters)",
		TagPassword:   "{0} must be at least 8 characters and contain at least one letter and one number",
		TagExperience: "{0} must be one of: 0-2yr, 3-5yr, 6yr and above",
		TagSafeString: "{0} contains potentially unsafe content",
		TagTrimmed:    "{0} must not have leading or trailing spaces",
	}

	for tag, message := range translations {
		registerTranslation(v.validate, trans, tag, message)
	}
}

// registerChineseTranslations registers Chinese translations for custom rules.
func (v *Validator) registerChineseTranslations(trans ut.Translator) {
	translations := map[string]string{
		TagUsername:   "{0}必须以字母开头，只能包含字母、数字和下划线（3-32个字符）",
		TagPassword:   "{0}必须至少8个字符，且包含至少一个字母和一个数字",
		TagExperience: "{0}必须是以下之一：0-2yr、3-5yr、6yr and above",
		TagSafeString: "{0}包含潜在的不安全内容",
		TagTrimmed:    "{0}不能有前导或尾随空格",
	}

	for tag, message := range translations {
		registerTranslation(v.validate, trans, tag, message)
	}
}

// registerTranslation registers a single translation.
func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, message string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}
