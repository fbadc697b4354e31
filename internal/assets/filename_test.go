package assets

import "testing"

func TestVersionedFilename(t *testing.T) {
	tests := []struct {
		name    string
		asset   string
		version int
		ext     string
		want    string
	}{
		{name: "explicit extension", asset: "promo", version: 3, ext: "png", want: "promo_v3.png"},
		{name: "default extension", asset: "promo", version: 1, ext: "", want: "promo_v1.png"},
		{name: "mp4", asset: "promo_video", version: 2, ext: "mp4", want: "promo_video_v2.mp4"},
		{name: "first version", asset: "holiday_promo", version: 1, ext: "png", want: "holiday_promo_v1.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VersionedFilename(tt.asset, tt.version, tt.ext)
			if got != tt.want {
				t.Errorf("VersionedFilename(%q, %d, %q) = %q, want %q", tt.asset, tt.version, tt.ext, got, tt.want)
			}
		})
	}
}

func TestBaseAssetName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		ok       bool
	}{
		{filename: "foo_v5.png", want: "foo", ok: true},
		{filename: "holiday_promo_v12.png", want: "holiday_promo", ok: true},
		{filename: "launch_video_v1.mp4", want: "launch_video", ok: true},
		{filename: "randomfile.png", want: "", ok: false},
		{filename: "no_extension_v3", want: "no_extension", ok: true},
		{filename: "_v1.png", want: "", ok: false},
		{filename: "", want: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := BaseAssetName(tt.filename)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BaseAssetName(%q) = (%q, %v), want (%q, %v)", tt.filename, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVideoNamespace(t *testing.T) {
	if got := VideoNamespace("launch"); got != "launch_video" {
		t.Errorf("VideoNamespace(launch) = %q, want launch_video", got)
	}
}
