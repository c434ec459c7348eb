package school

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/eduportal/core"
)

var (
	gradeTag  = "grade"
	gradeText = "grade must be 2-5 or 0 for an absence mark"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the login or name"
)

// InitValidators registers the school validators. core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	core.RegisterCustomTranslation(validate, translator, gradeTag, gradeText)

	validate.RegisterStructValidation(passwordStructValidation,
		NewUser{}, UpdateUser{}, NewStudent{}, NewTeacher{}, PasswordChange{})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// NewValidator returns a ready to use validator with the core and school rules registered.
func NewValidator() *core.Validator {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return core.NewValidator(validate, translator)
}

// ValidGrade reports whether g is a storable grade: 2 to 5, or the absence mark.
func ValidGrade(g int) bool {
	return g == AbsentGrade || (g >= 2 && g <= 5)
}

func gradeValidation(fl validator.FieldLevel) bool {
	return ValidGrade(int(fl.Field().Int()))
}

// passwordStructValidation applies the password policy to forms carrying a password.
func passwordStructValidation(sl validator.StructLevel) {
	switch form := sl.Current().Interface().(type) {
	case NewUser:
		validatePassword(form.Password, "password", sl, form.Login, form.FirstName, form.LastName)
	case UpdateUser:
		if form.Password != "" {
			validatePassword(form.Password, "password", sl, form.Login, form.FirstName, form.LastName)
		}
	case NewStudent:
		validatePassword(form.Password, "password", sl, form.Login, form.FirstName, form.LastName)
	case NewTeacher:
		validatePassword(form.Password, "password", sl, form.Login, form.FirstName, form.LastName)
	case PasswordChange:
		validatePassword(form.NewPassword, "new_password", sl)
	}
}

// validatePassword applies the password policy to provided password:
// - minLen: 8
// - no whitespace
// - no all numeric
// - no similarity with the login or name
func validatePassword(pwd, field string, sl validator.StructLevel, attrs ...string) {
	if pwd == "" {
		return // reported by the required tag
	}
	reportErr := func(tag string) {
		sl.ReportError(pwd, field, field, tag, "")
	}

	var digitCount int
	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			reportErr(pwdNoSpaceTag)
			return
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == pwdLen {
		reportErr(pwdNotAllNumTag)
		return
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
		if ratio >= pwdMaxSim {
			reportErr(pwdAttrSimTag)
			return
		}
	}
}
