package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                     "/",
		"/metrics":                             "/metrics",
		"/v1/organizations/org-1":              "/v1/organizations/:id",
		"/v1/organizations/org-1/orders":       "/v1/organizations/:id/orders",
		"/v1/organizations/org-1/orders/extra": "/v1/organizations/org-1/orders/extra",
		"/v1/orders/abc":                       "/v1/orders/:id",
		"/v1/orders/abc/advance":               "/v1/orders/:id/advance",
		"/v1/audit":                            "/v1/audit",
		"/v1/audit?limit=10":                   "/v1/audit",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
