package catalog

import "testing"

func TestDefaultOrder(t *testing.T) {
	t.Parallel()

	var ids []string
	for _, s := range Default().Signatures() {
		ids = append(ids, s.ID)
	}

	expected := []string{"nextjs", "nuxt", "react", "vue"}
	if len(ids) != len(expected) {
		t.Fatalf("expected %d signatures, got %d", len(expected), len(ids))
	}
	for i, id := range expected {
		if ids[i] != id {
			t.Fatalf("expected %q at position %d, got %q", id, i, ids[i])
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	sig, ok := Default().Lookup("vue")
	if !ok {
		t.Fatal("expected vue signature")
	}
	if sig.Name != "Vue" {
		t.Fatalf("expected %q, got %q", "Vue", sig.Name)
	}

	if _, ok := Default().Lookup("angular"); ok {
		t.Fatal("expected no match for unregistered id")
	}
}

func TestSignatureCategory(t *testing.T) {
	t.Parallel()

	react, ok := Default().Lookup("react")
	if !ok {
		t.Fatal("expected react signature")
	}
	next, ok := Default().Lookup("nextjs")
	if !ok {
		t.Fatal("expected nextjs signature")
	}

	cases := []struct {
		name     string
		sig      Signature
		path     string
		expected string
	}{
		{name: "Components", sig: react, path: "src/components/Button.jsx", expected: "components"},
		{name: "UIAlias", sig: react, path: "src/ui/Modal.tsx", expected: "components"},
		{name: "Hooks", sig: react, path: "src/hooks/useAuth.ts", expected: "hooks"},
		{name: "TestsBeforeComponents", sig: react, path: "src/components/__tests__/Button.test.jsx", expected: "tests"},
		{name: "SpecSuffix", sig: react, path: "src/App.spec.tsx", expected: "tests"},
		{name: "StylesByExtension", sig: react, path: "src/theme/dark.css", expected: "styles"},
		{name: "Fallback", sig: react, path: "src/index.jsx", expected: CategoryOther},
		{name: "ApiBeforePages", sig: next, path: "pages/api/users.ts", expected: "api"},
		{name: "AppRouter", sig: next, path: "app/dashboard/page.tsx", expected: "pages"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.sig.Category(tc.path); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
