package mediaio

import "testing"

func TestIsNetworkURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"rtsp://192.168.1.10/stream1", true},
		{"rtsps://cam.local/live", true},
		{"rtmp://ingest.example.com/app/key", true},
		{"http://example.com/playlist.m3u8", true},
		{"https://example.com/playlist.m3u8", true},
		{"ws://example.com/socket", true},
		{"/home/user/videos/clip.mp4", false},
		{"clip.mkv", false},
		{"file:///home/user/videos/clip.mp4", false},
	}
	for _, c := range cases {
		if got := IsNetworkURL(c.url); got != c.want {
			t.Errorf("IsNetworkURL(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}
