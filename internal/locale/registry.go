package locale

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/spetersoncode/timeago/internal/distance"
	"github.com/spetersoncode/timeago/internal/errors"
)

//go:embed locales/*.toml
var embedLocales embed.FS

// builtins maps a locale name to a constructor. Locales whose plural rules
// need code are registered here directly; the rest come from locales/*.toml.
var builtins = map[string]func() (*Strings, error){
	"en": func() (*Strings, error) { return English(), nil },
	"ru": func() (*Strings, error) { return Russian(), nil },
}

func init() {
	entries, err := embedLocales.ReadDir("locales")
	if err != nil {
		panic(fmt.Sprintf("locale: reading embedded locales: %v", err))
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".toml")
		file := path.Join("locales", e.Name())
		builtins[name] = func() (*Strings, error) {
			f, err := DecodeFile(embedLocales, file)
			if err != nil {
				return nil, err
			}
			return f.Apply(English())
		}
	}
}

// Lookup returns a fresh copy of a built-in locale.
func Lookup(name string) (*Strings, error) {
	ctor, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, errors.NotFound("unknown locale %q", name).
			WithSuggestion("Run 'timeago locales' to list built-in locales.")
	}
	return ctor()
}

// Names lists the built-in locales in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Russian returns the Russian table. Counted buckets pick one of three
// plural forms.
func Russian() *Strings {
	plural := func(one, few, many string) Template {
		return Dynamic(func(n int, _ int64) string {
			return slavicPlural(n, one, few, many)
		})
	}

	return &Strings{
		PrefixFromNow: "через",
		SuffixAgo:     "назад",
		Templates: map[distance.Bucket]Template{
			distance.Seconds: Literal("меньше минуты"),
			distance.Minute:  Literal("минуту"),
			distance.Minutes: plural("%d минуту", "%d минуты", "%d минут"),
			distance.Hour:    Literal("час"),
			distance.Hours:   plural("%d час", "%d часа", "%d часов"),
			distance.Day:     Literal("день"),
			distance.Days:    plural("%d день", "%d дня", "%d дней"),
			distance.Month:   Literal("месяц"),
			distance.Months:  plural("%d месяц", "%d месяца", "%d месяцев"),
			distance.Year:    Literal("год"),
			distance.Years:   plural("%d год", "%d года", "%d лет"),
		},
	}
}

// slavicPlural picks the form for n: one for 1, 21, 31...; few for 2-4,
// 22-24...; many otherwise, including the teens.
func slavicPlural(n int, one, few, many string) string {
	n10 := n % 10
	switch {
	case n10 == 1 && (n == 1 || n > 20):
		return one
	case n10 > 1 && n10 < 5 && (n > 20 || n < 10):
		return few
	default:
		return many
	}
}
