package usecase

// defaultStyleDescriptor is used for any style key outside the table.
const defaultStyleDescriptor = "professional commercial photography"

// styleDescriptors maps the 17 selectable ad styles to their visual descriptor.
var styleDescriptors = map[string]string{
	"luxury-premium":     "luxury and premium, high-end aesthetic, sophisticated, vogue style",
	"minimalist-studio":  "minimalist studio photography, clean lines, neutral colors, extreme simplicity, cos",
	"luxury-boutique":    "luxury boutique interior, expensive atmosphere, high-end retail",
	"natural-daylight":   "soft natural daylight, organic sun flare, warm tones, golden hour",
	"vintage-retro":      "vintage 90s aesthetic, film grain, retro vibe, nostalgic",
	"neon-cyberpunk":     "neon lighting, futuristic cyberpunk city atmosphere, blue and pink leds",
	"cinematic-dramatic": "cinematic dramatic lighting, moody atmosphere, shadow play, chiaroscuro",
	"pop-art":            "vivid colors, bold pop art contrast, high energy, color-blocking",
	"art-deco":           "art deco style, geometric patterns, gold and black palette, opulent",
	"gothic":             "gothic aesthetic, dark and moody, dramatic shadows, mystical",
	"sci-fi":             "sci-fi aesthetic, high tech environment, futuristic lighting, metallic",
	"retro-futurism":     "retro futurism, 80s sci-fi vision, synthwave colors",
	"abstract":           "abstract background, surreal shapes, artistic composition, modern art",
	"steampunk":          "steampunk aesthetic, bronze and copper tones, gears and industrial details",
	"vaporwave":          "vaporwave aesthetic, pastel purple and pink tones, glitch effects, 90s digital art",
	"bauhaus":            "bauhaus design, geometric forms, primary colors, functional and minimalist",
	"rustic-bohemian":    "rustic and bohemian, natural textures, earth tones, ethnic patterns, warm atmosphere",
}

// styleAliases accepts the storefront's Turkish display labels.
var styleAliases = map[string]string{
	"lüks ve premium":       "luxury-premium",
	"minimalist stüdyo":     "minimalist-studio",
	"lüks mağaza atmosferi": "luxury-boutique",
	"doğal gün işığı":       "natural-daylight",
	"vintage & retro":       "vintage-retro",
	"neon & cyberpunk":      "neon-cyberpunk",
	"sinematik & dramatik":  "cinematic-dramatic",
	"renkli & pop art":      "pop-art",
	"art deco":              "art-deco",
	"gotik":                 "gothic",
	"bilim kurgu":           "sci-fi",
	"retro fütürizm":        "retro-futurism",
	"soyut":                 "abstract",
	"steampunk":             "steampunk",
	"vaporwave":             "vaporwave",
	"bauhaus":               "bauhaus",
	"rustik & bohem":        "rustic-bohemian",
}

type sceneTemplate struct {
	Label string
	Body  string
}

// campaignScenes are ordered; a campaign run takes the first K.
var campaignScenes = [...]sceneTemplate{
	{"City & Street Fashion", `ENVIRONMENT: Urban street, stylish city vibe. Blurred background (bokeh).
POSE: Model walking confidently or looking at camera.
LIGHTING: Natural daylight.`},
	{"Cafe & Lifestyle", `ENVIRONMENT: Luxury cafe terrace or stylish interior.
POSE: Model sitting comfortably, drinking coffee or reading.
LIGHTING: Soft interior lighting.`},
	{"Nature & Landscape", `ENVIRONMENT: Nature, park, or beach at golden hour.
POSE: Model leaning lightly, peaceful and aesthetic.
LIGHTING: Cinematic warm and romantic sun flare.`},
	{"Creative Studio & Editorial", `ENVIRONMENT: Creative fashion studio. Solid color or textured artistic background.
POSE: High-fashion editorial pose, dramatic and bold.
LIGHTING: High contrast, dramatic studio lighting.`},
	{"Rooftop at Dusk", `ENVIRONMENT: Modern rooftop terrace overlooking a city skyline at dusk.
POSE: Model standing by the railing, three-quarter turn toward camera.
LIGHTING: Blue hour ambience with warm practical lights.`},
	{"Luxury Hotel Lobby", `ENVIRONMENT: Marble hotel lobby with brass details and tall columns.
POSE: Model walking through the lobby, relaxed and elegant.
LIGHTING: Warm chandeliers, soft reflections on marble.`},
	{"Art Gallery", `ENVIRONMENT: Minimal contemporary art gallery with white walls and large canvases.
POSE: Model standing still, contemplating an artwork in profile.
LIGHTING: Even gallery lighting, gentle shadows.`},
	{"Seaside Promenade", `ENVIRONMENT: Mediterranean seaside promenade with whitewashed walls.
POSE: Model strolling, fabric moving slightly in the breeze.
LIGHTING: Bright midday sun with crisp shadows.`},
	{"Night Out", `ENVIRONMENT: Upscale evening street with boutique windows and soft neon reflections.
POSE: Model stepping out of a doorway, confident glance at camera.
LIGHTING: Night lighting with controlled highlights on the product.`},
	{"Architectural Minimal", `ENVIRONMENT: Brutalist concrete architecture with strong geometric lines.
POSE: Model leaning against a wall, structured and graphic stance.
LIGHTING: Hard directional sunlight creating graphic shadows.`},
}

// ecommercePoses are ordered; an ecommerce run takes the first K.
var ecommercePoses = [...]sceneTemplate{
	{"Front View", "Full front view. Model looking at camera. Symmetrical. Neutral standing pose."},
	{"Back View", "Back view of the model. Show back details and cut. Neutral standing pose."},
	{"Side View", "Side profile view of the model. Show silhouette and side details."},
	{"Fabric Detail (Close-up)", "Close-up macro shot of the fabric. Focus on texture. (Model may be cropped)"},
	{"Lifestyle Moment", "Model in slight motion, walking or turning. Natural drape of the fabric."},
	{"Full Body", "Full body shot of the model showing the entire look + shoes. Professional pose."},
	{"Three-Quarter View", "Three-quarter angle of the model, weight on one leg. Shows front and side construction."},
	{"Artistic Editorial", "Editorial catalog pose with a graceful hand gesture. Still, elegant and non-suggestive."},
	{"Seated Pose", "Model seated on a simple stool. Shows how the garment drapes when sitting."},
	{"Walking Motion", "Mid-stride walking shot from the front. Captures movement and fit in motion."},
	{"Detail Accent (Collar & Cuffs)", "Medium close-up on neckline, closures and cuffs. Model partially cropped."},
	{"Styled Look", "Full look styled with neutral complementary pieces. Catalog hero pose."},
}

const ecommerceBackground = `BACKGROUND: Clean, distraction-free, consistent with **%s**.
LIGHTING: Softbox studio lighting to show product details clearly. Soft shadows.`

const patternTransformation = `TRANSFORMATION: PATTERN MAPPING.
Apply the supplied pattern/texture reference image onto the garment surface.
Follow every fold, seam and drape of the fabric. Keep the original lighting, shadows and material response.
Do not change the garment cut or silhouette.`

const colorTransformation = `TRANSFORMATION: COLOR VARIANT.
Recolor the garment to **%s** while keeping fabric texture, stitching, hardware and silhouette identical.
Only the product color changes; skin tones, background and lighting stay as described.`
