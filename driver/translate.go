package driver

// Translator rewrites one placeholder occurrence into the dialect's form.
type Translator interface {
	Translate(matched string) string
}

// TranslateFunc is a function adapter for Translator.
type TranslateFunc func(matched string) string

func (f TranslateFunc) Translate(matched string) string {
	return f(matched)
}
