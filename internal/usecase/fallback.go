package usecase

import "fmt"

// FallbackRewriter builds the second-attempt instruction after a safety refusal.
// The retry structure is fixed; the wording is provider-specific and swappable.
type FallbackRewriter interface {
	Rewrite(instruction string) string
}

// FallbackFunc adapts a plain function.
type FallbackFunc func(instruction string) string

func (f FallbackFunc) Rewrite(instruction string) string { return f(instruction) }

// SafeHumanFallback keeps a live human model and steers framing, pose and render style
// toward what the image moderation layer lets through.
type SafeHumanFallback struct{}

var _ FallbackRewriter = SafeHumanFallback{}

func (SafeHumanFallback) Rewrite(instruction string) string {
	return fmt.Sprintf(`CRITICAL RE-GENERATION TASK:
The previous image was blocked by safety filters.

NEW STRATEGY: RENDER A REALISTIC HUMAN FASHION MODEL (NOT A MANNEQUIN).

TO ENSURE SAFETY COMPLIANCE:
1. Use a WIDE ANGLE / LONG SHOT (Do not zoom in on body parts).
2. Pose must be "High Fashion Editorial" - rigid, artistic, and completely non-suggestive.
3. Use DRAMATIC LIGHTING or SILHOUETTE lighting if necessary to reduce skin exposure detail while keeping the fashion visible.
4. If the product is swimwear/lingerie, treat it as "Artistic Swim" or "High-End Lounge" with appropriate cover-ups or props if needed to pass filters.
5. Aesthetic: Hyper-realistic 3D Render style (Unreal Engine 5) - this often passes filters better than photo-realism while looking like a live model.

Original Task Context: %s`, instruction)
}
