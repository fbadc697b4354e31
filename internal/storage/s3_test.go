package storage

import "testing"

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		want      string
	}{
		{
			"unconfigured",
			"",
			"",
		},
		{
			"base URL",
			"https://assets.example.com",
			"https://assets.example.com/sessions/s1/artifacts/promo_v1.png/1",
		},
		{
			"trailing slash",
			"https://assets.example.com/",
			"https://assets.example.com/sessions/s1/artifacts/promo_v1.png/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{bucket: "creative-assets", publicURL: tt.publicURL}
			if got := c.PublicURL("s1", "promo_v1.png"); got != tt.want {
				t.Errorf("PublicURL = %q, want %q", got, tt.want)
			}
		})
	}
}
