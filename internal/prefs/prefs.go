// ABOUTME: Display preferences (currency, language) kept on the credential store
// ABOUTME: Survive logout; an unknown saved value falls back to the default

package prefs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PrathikReddy560/SpendX/internal/store"
)

// Currency describes a supported display currency.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Language describes a supported UI language.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

// Defaults used when nothing valid is stored.
const (
	DefaultCurrency = "INR"
	DefaultLanguage = "en"
)

var currencies = []Currency{
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
}

var languages = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "hi", Name: "Hindi", NativeName: "हिंदी"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు"},
}

// Currencies lists the supported currencies.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

// Languages lists the supported languages.
func Languages() []Language {
	return append([]Language(nil), languages...)
}

// LookupCurrency finds a currency by code, case-insensitively.
func LookupCurrency(code string) (Currency, bool) {
	for _, c := range currencies {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return Currency{}, false
}

// LookupLanguage finds a language by code, case-insensitively.
func LookupLanguage(code string) (Language, bool) {
	for _, l := range languages {
		if strings.EqualFold(l.Code, code) {
			return l, true
		}
	}
	return Language{}, false
}

// Prefs reads and writes preferences through a Store.
type Prefs struct {
	st store.Store
}

// New returns preferences backed by st.
func New(st store.Store) *Prefs {
	return &Prefs{st: st}
}

// Currency returns the saved currency, or INR when none (or an unknown one) is saved.
func (p *Prefs) Currency() (Currency, error) {
	def, _ := LookupCurrency(DefaultCurrency)
	v, ok, err := p.st.Get(store.KeyCurrency)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	if c, found := LookupCurrency(v); found {
		return c, nil
	}
	return def, nil
}

// SetCurrency saves a currency code.
func (p *Prefs) SetCurrency(code string) (Currency, error) {
	c, ok := LookupCurrency(code)
	if !ok {
		return Currency{}, fmt.Errorf("unsupported currency %q (supported: %s)", code, currencyCodes())
	}
	if err := p.st.Set(store.KeyCurrency, c.Code); err != nil {
		return Currency{}, err
	}
	return c, nil
}

// Language returns the saved language, or English.
func (p *Prefs) Language() (Language, error) {
	def, _ := LookupLanguage(DefaultLanguage)
	v, ok, err := p.st.Get(store.KeyLanguage)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	if l, found := LookupLanguage(v); found {
		return l, nil
	}
	return def, nil
}

// SetLanguage saves a language code.
func (p *Prefs) SetLanguage(code string) (Language, error) {
	l, ok := LookupLanguage(code)
	if !ok {
		return Language{}, fmt.Errorf("unsupported language %q (supported: %s)", code, languageCodes())
	}
	if err := p.st.Set(store.KeyLanguage, l.Code); err != nil {
		return Language{}, err
	}
	return l, nil
}

// FormatAmount renders amount with the currency symbol and two decimals.
// INR groups digits the Indian way (1,00,000.00); other currencies group by thousands.
func (c Currency) FormatAmount(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatFloat(math.Round(amount*100)/100, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	if c.Code == "INR" {
		whole = groupIndian(whole)
	} else {
		whole = groupThousands(whole)
	}
	return sign + c.Symbol + whole + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// groupIndian keeps the last three digits together and groups the rest in pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

func currencyCodes() string {
	codes := make([]string, len(currencies))
	for i, c := range currencies {
		codes[i] = c.Code
	}
	return strings.Join(codes, ", ")
}

func languageCodes() string {
	codes := make([]string, len(languages))
	for i, l := range languages {
		codes[i] = l.Code
	}
	return strings.Join(codes, ", ")
}
