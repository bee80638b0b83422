package usecase

import (
	"strings"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

// Keyword sets are checked child first: "girls dress" must not become an adult female persona.
var (
	childKeywords  = []string{"kid", "child", "children", "baby", "toddler", "boys", "girls", "junior", "çocuk", "bebek"}
	femaleKeywords = []string{"women", "woman", "female", "ladies", "lady", "dress", "skirt", "blouse", "bikini", "lingerie", "bra", "kadın", "elbise", "etek", "bluz"}
	maleKeywords   = []string{"men", "man", "male", "gentleman", "menswear", "erkek"}
	unisexKeywords = []string{"unisex", "gender-neutral", "genderless"}
)

// ClassifyPersona infers the model persona from the analysis text.
// Fields are consulted category, audience, name, style; the first field with a match wins.
// No match falls back to unisex.
func ClassifyPersona(a model.ProductAnalysis) model.Persona {
	for _, field := range []string{a.Category, a.TargetAudience, a.ProductName, a.Style} {
		words := tokenize(field)
		if len(words) == 0 {
			continue
		}
		switch {
		case containsAny(words, unisexKeywords):
			return model.PersonaUnisex
		case containsAny(words, childKeywords):
			return model.PersonaChild
		case containsAny(words, femaleKeywords):
			return model.PersonaFemale
		case containsAny(words, maleKeywords):
			return model.PersonaMale
		}
	}
	return model.PersonaUnisex
}

// PersonaDirective is reused verbatim across every job of a run so the model looks the same.
func PersonaDirective(p model.Persona) string {
	const prefix = "MODEL CONSISTENCY: Use the SAME model in every image of this series: "
	switch p {
	case model.PersonaFemale:
		return prefix + "a professional adult female fashion model, late 20s, natural makeup, shoulder-length dark hair, neutral confident expression."
	case model.PersonaMale:
		return prefix + "a professional adult male fashion model, early 30s, short groomed hair, light stubble, neutral confident expression."
	case model.PersonaChild:
		return prefix + "a cheerful child model around 8 years old, fully and modestly dressed, natural relaxed expression, family catalog style."
	default:
		return prefix + "a professional adult fashion model with an androgynous, gender-neutral look, short styled hair, neutral confident expression."
	}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r == '-' || r >= 'a' && r <= 'z' || r > 127)
	})
}

func containsAny(words, keywords []string) bool {
	for _, w := range words {
		for _, k := range keywords {
			if w == k {
				return true
			}
		}
	}
	return false
}
