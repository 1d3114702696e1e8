package catalog

import "regexp"

func cat(name, pattern string) Category {
	return Category{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// std lists the recognized frameworks. Meta-frameworks come first: a Next.js
// manifest also declares react, so order decides which signature wins.
var std = New(
	Signature{
		ID:           "nextjs",
		Name:         "Next.js",
		Icon:         "▲",
		ConfigFiles:  []string{"next.config.js", "next.config.mjs", "next.config.ts"},
		Dependencies: []string{"next"},
		Dirs:         []string{".next"},
		Categories: []Category{
			cat("tests", `(^|/)(__tests__|tests?)(/|$)|\.(test|spec)\.[^/]+$`),
			cat("api", `(^|/)api(/|$)`),
			cat("components", `(^|/)(components|ui)(/|$)`),
			cat("pages", `(^|/)(pages|app)(/|$)`),
			cat("hooks", `(^|/)hooks(/|$)`),
			cat("state", `(^|/)(store|context|redux)(/|$)`),
			cat("styles", `(^|/)styles(/|$)|\.(css|scss|sass|less)$`),
			cat("assets", `(^|/)(assets|public|static)(/|$)`),
			cat("utils", `(^|/)(utils|helpers|lib)(/|$)`),
		},
	},
	Signature{
		ID:           "nuxt",
		Name:         "Nuxt",
		Icon:         "🟩",
		ConfigFiles:  []string{"nuxt.config.js", "nuxt.config.ts"},
		Dependencies: []string{"nuxt"},
		Dirs:         []string{".nuxt", ".output"},
		Categories: []Category{
			cat("tests", `(^|/)(__tests__|tests?)(/|$)|\.(test|spec)\.[^/]+$`),
			cat("server", `(^|/)server(/|$)`),
			cat("components", `(^|/)(components|ui)(/|$)`),
			cat("pages", `(^|/)pages(/|$)`),
			cat("layouts", `(^|/)layouts(/|$)`),
			cat("composables", `(^|/)composables(/|$)`),
			cat("state", `(^|/)(store|stores)(/|$)`),
			cat("styles", `(^|/)styles(/|$)|\.(css|scss|sass|less)$`),
			cat("assets", `(^|/)(assets|public|static)(/|$)`),
			cat("utils", `(^|/)(utils|helpers|lib)(/|$)`),
		},
	},
	Signature{
		ID:           "react",
		Name:         "React",
		Icon:         "⚛️",
		ConfigFiles:  []string{},
		Dependencies: []string{"react", "react-dom"},
		Dirs:         []string{},
		Categories: []Category{
			cat("tests", `(^|/)(__tests__|tests?)(/|$)|\.(test|spec)\.[^/]+$`),
			cat("components", `(^|/)(components|ui)(/|$)`),
			cat("hooks", `(^|/)hooks(/|$)`),
			cat("pages", `(^|/)(pages|views|screens)(/|$)`),
			cat("state", `(^|/)(store|context|redux)(/|$)`),
			cat("styles", `(^|/)styles(/|$)|\.(css|scss|sass|less)$`),
			cat("assets", `(^|/)(assets|public|static)(/|$)`),
			cat("utils", `(^|/)(utils|helpers|lib)(/|$)`),
		},
	},
	Signature{
		ID:           "vue",
		Name:         "Vue",
		Icon:         "💚",
		ConfigFiles:  []string{"vue.config.js"},
		Dependencies: []string{"vue"},
		Dirs:         []string{},
		Categories: []Category{
			cat("tests", `(^|/)(__tests__|tests?)(/|$)|\.(test|spec)\.[^/]+$`),
			cat("components", `(^|/)(components|ui)(/|$)`),
			cat("views", `(^|/)(views|pages)(/|$)`),
			cat("composables", `(^|/)(composables|hooks)(/|$)`),
			cat("state", `(^|/)(store|stores)(/|$)`),
			cat("router", `(^|/)router(/|$)`),
			cat("styles", `(^|/)styles(/|$)|\.(css|scss|sass|less)$`),
			cat("assets", `(^|/)(assets|public|static)(/|$)`),
			cat("utils", `(^|/)(utils|helpers|lib)(/|$)`),
		},
	},
)

// Default returns the built-in framework registry.
func Default() *Catalog {
	return std
}
