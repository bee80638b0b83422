package usecase

import (
	"fmt"
	"strings"

	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
)

const (
	campaignMinJobs  = 4
	campaignMaxJobs  = 10
	ecommerceMinJobs = 6
	ecommerceMaxJobs = 12

	patternLabelSuffix = " (Pattern)"
)

// Synthesize turns an analysis plus a run configuration into the ordered job list.
// It has no side effects; the only positional variation is colorList[i mod L].
func Synthesize(a model.ProductAnalysis, cfg model.RunConfiguration) []model.GenerationJob {
	style := ResolveStyle(cfg.Style)
	base := baseInstruction(a, cfg, style)

	var scenes []sceneTemplate
	sceneBlock := func(t sceneTemplate) string { return t.Body }
	switch cfg.Mode {
	case model.ModeEcommerce:
		scenes = ecommercePoses[:ClampCount(cfg.Mode, cfg.Count)]
		bg := fmt.Sprintf(ecommerceBackground, style)
		sceneBlock = func(t sceneTemplate) string { return "POSE: " + t.Body + "\n" + bg }
	default:
		scenes = campaignScenes[:ClampCount(model.ModeCampaign, cfg.Count)]
	}

	colors := ParseColorList(cfg.ColorVariations)
	jobs := make([]model.GenerationJob, 0, len(scenes))
	for i, scene := range scenes {
		label := scene.Label
		transform := ""
		switch {
		case cfg.HasPattern:
			label += patternLabelSuffix
			transform = patternTransformation
		case len(colors) > 0:
			c := colors[i%len(colors)]
			label = fmt.Sprintf("%s (%s)", label, c)
			transform = fmt.Sprintf(colorTransformation, c)
		}

		parts := []string{base}
		if transform != "" {
			parts = append(parts, transform)
		}
		parts = append(parts, sceneBlock(scene))

		jobs = append(jobs, model.GenerationJob{
			ID:          i + 1,
			Label:       label,
			Instruction: strings.Join(parts, "\n\n"),
		})
	}
	return jobs
}

// ClampCount bounds the requested job count to the mode's template range.
func ClampCount(mode model.Mode, n int) int {
	lo, hi := campaignMinJobs, campaignMaxJobs
	if mode == model.ModeEcommerce {
		lo, hi = ecommerceMinJobs, ecommerceMaxJobs
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ResolveStyle never fails: unknown keys get the generic descriptor.
func ResolveStyle(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := styleAliases[k]; ok {
		k = alias
	}
	if d, ok := styleDescriptors[k]; ok {
		return d
	}
	return defaultStyleDescriptor
}

// StyleKeys lists the selectable style keys.
func StyleKeys() []string {
	keys := make([]string, 0, len(styleDescriptors))
	for k := range styleDescriptors {
		keys = append(keys, k)
	}
	return keys
}

// ParseColorList splits a comma-separated list; blank entries are dropped.
func ParseColorList(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func baseInstruction(a model.ProductAnalysis, cfg model.RunConfiguration, style string) string {
	subject := strings.TrimSpace(cfg.ProductName)
	if subject == "" {
		subject = a.ProductName
	}
	brand := "High-end Brand Identity."
	if b := strings.TrimSpace(cfg.Brand); b != "" {
		brand = fmt.Sprintf("Brand Identity: %s.", b)
	}
	persona := cfg.Persona
	if persona == model.PersonaAuto {
		persona = ClassifyPersona(a)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `CONTEXT: Professional Commercial Fashion Photography.
PURPOSE: High-End Retail Catalog.
SUBJECT: %s.

SYSTEM GUIDELINES:
- Generate a safe-for-work, professional retail image.
- USE A REALISTIC HUMAN MODEL (Fashion Model).
- NO sexually suggestive content, poses, or expressions.
- Modest, elegant, and professional posing suitable for general audiences.

TASK: %s Visualize the product from the reference image worn by a model.

PRODUCT PRESERVATION RULES:
1. COLOR FIDELITY: The product color MUST match **%s** exactly.
2. MATERIAL: Emphasize the %s texture.
3. DETAILS: Keep details like %s.
4. SILHOUETTE: Maintain the cut and physical attributes of the product from the reference image.

%s

STYLE: %s. 8k resolution, highly detailed, sharp focus, professional lighting.

%s`,
		subject, brand, a.PrimaryColor, a.Material, strings.Join(a.Features, ", "),
		PersonaDirective(persona), style, textOverlayDirective(cfg))

	if custom := strings.TrimSpace(cfg.CustomPrompt); custom != "" {
		fmt.Fprintf(&sb, "\n\nUSER CUSTOM INSTRUCTIONS (PRIORITY): %s", custom)
	}
	return sb.String()
}

func textOverlayDirective(cfg model.RunConfiguration) string {
	if text := strings.TrimSpace(cfg.OverlayText); cfg.RenderText && text != "" {
		return fmt.Sprintf(`TEXT OVERLAY: Render the literal text "%s" integrated naturally into the scene
(signage, print or typography). Spell it exactly, no other text.`, text)
	}
	return "TEXT: Do NOT render any text, letters, logos, watermarks or captions in the image."
}
