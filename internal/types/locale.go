package types

// Locale identifies one of the supported UI languages. Cache entries are
// keyed per locale because the weather provider localizes condition text.
type Locale string

// Supported locales. Japanese is the application default.
const (
	LocaleJapanese Locale = "ja"
	LocaleEnglish  Locale = "en"
	LocaleChinese  Locale = "zh"
)

// DefaultLocale is used when a request carries no locale or an unsupported one.
const DefaultLocale = LocaleJapanese

// NormalizeLocale maps an arbitrary string onto a supported Locale,
// falling back to the default.
func NormalizeLocale(s string) Locale {
	switch Locale(s) {
	case LocaleJapanese, LocaleEnglish, LocaleChinese:
		return Locale(s)
	default:
		return DefaultLocale
	}
}
