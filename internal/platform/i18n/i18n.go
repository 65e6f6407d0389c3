package i18n

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/learnpages/internal/platform/ctxutil"
)

//go:embed messages.yaml
var builtinMessages []byte

// catalog: locale -> namespace -> key -> message
type catalog map[string]map[string]map[string]string

type Translator struct {
	defaultLocale string
	messages      catalog
}

// NewTranslator loads the embedded catalog plus any extra YAML documents
// (later documents override earlier keys).
func NewTranslator(defaultLocale string, extra ...[]byte) (*Translator, error) {
	tr := &Translator{
		defaultLocale: normalizeLocale(defaultLocale),
		messages:      catalog{},
	}
	if tr.defaultLocale == "" {
		tr.defaultLocale = "en"
	}
	for i, raw := range append([][]byte{builtinMessages}, extra...) {
		if err := tr.load(raw); err != nil {
			return nil, fmt.Errorf("load catalog %d: %w", i, err)
		}
	}
	return tr, nil
}

func (tr *Translator) load(raw []byte) error {
	var doc catalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for locale, namespaces := range doc {
		locale = normalizeLocale(locale)
		if tr.messages[locale] == nil {
			tr.messages[locale] = map[string]map[string]string{}
		}
		for ns, msgs := range namespaces {
			if tr.messages[locale][ns] == nil {
				tr.messages[locale][ns] = map[string]string{}
			}
			for k, v := range msgs {
				tr.messages[locale][ns][k] = v
			}
		}
	}
	return nil
}

// T looks key up in the locale carried on ctx, then its base language, then
// the default locale. Unknown keys come back as the key itself.
func (tr *Translator) T(ctx context.Context, namespace, key string) string {
	locale := ""
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		locale = rd.Locale
	}
	for _, cand := range tr.candidates(locale) {
		if msg, ok := tr.messages[cand][namespace][key]; ok {
			return msg
		}
	}
	return key
}

func (tr *Translator) candidates(locale string) []string {
	locale = normalizeLocale(locale)
	out := make([]string, 0, 3)
	if locale != "" {
		out = append(out, locale)
		if base, _, ok := strings.Cut(locale, "-"); ok {
			out = append(out, base)
		}
	}
	return append(out, tr.defaultLocale)
}

// FromAcceptLanguage picks the first language tag of an Accept-Language header.
func FromAcceptLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return normalizeLocale(tag)
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	return strings.ReplaceAll(locale, "_", "-")
}
