package user

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	_ "embed"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/Joud158/PolyLab/core"
)

var (
	// password policy; the API enforces the same rules and answers
	// "Weak password", these run locally so the form can render field errors
	// without a round trip.
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to your email"

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"

	//go:embed common-passwords.txt
	commonPasswordsRaw string
	commonPasswords    []string
)

func init() {
	loadCommonPasswords()

	core.Validate.RegisterStructValidation(passwordStructValidation, Signup{})
	core.Validate.RegisterStructValidation(passwordStructValidation, ResetPassword{})
	core.RegisterCustomTranslation(pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(pwdAttrSimTag, pwdAttrSimText)
	core.RegisterCustomTranslation(pwdNoCommonTag, pwdNoCommonText)
}

func loadCommonPasswords() {
	for _, line := range strings.Split(commonPasswordsRaw, "\n") {
		if pwd := strings.TrimSpace(line); pwd != "" {
			commonPasswords = append(commonPasswords, pwd)
		}
	}
	sort.Strings(commonPasswords)
}

// passwordStructValidation applies the password policy on forms that set a password.
func passwordStructValidation(sl validator.StructLevel) {
	switch f := sl.Current().Interface().(type) {
	case Signup:
		validatePassword(f.Password, f.Email, sl)
	case ResetPassword:
		validatePassword(f.Password, "", sl)
	}
}

// validatePassword applies the password policy to the provided password:
// - minLen: 8
// - no whitespace
// - not all numeric
// - no email similarity
// - no common password
func validatePassword(pwd, email string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	pwdLen := len(pwd)
	if pwdLen == 0 {
		return // `required` already reports this
	}
	if pwdLen < pwdMinLen {
		reportErr(pwdMinLenTag)
		return
	}

	var digitCount int
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

	if email != "" {
		ratio := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(email, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			reportErr(pwdAttrSimTag)
			return
		}
	}

	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) {
		if match := commonPasswords[idx]; lpwd == match {
			reportErr(pwdNoCommonTag)
			return
		}
	}
}
