package format

func init() {
	Register(Format{
		ID:           "story",
		Name:         "Stories (9:16)",
		Width:        1080,
		Height:       1920,
		Label:        "TikTok / Reels",
		Container:    "webm",
		VideoBitrate: "8M",
		AudioBitrate: "128k",
	})
	Register(Format{
		ID:           "portrait",
		Name:         "Portrait (4:5)",
		Width:        1080,
		Height:       1350,
		Label:        "Insta Post",
		Container:    "webm",
		VideoBitrate: "8M",
		AudioBitrate: "128k",
	})
	Register(Format{
		ID:           "square",
		Name:         "Square (1:1)",
		Width:        1080,
		Height:       1080,
		Label:        "Universal",
		Container:    "webm",
		VideoBitrate: "8M",
		AudioBitrate: "128k",
	})
	Register(Format{
		ID:           "landscape",
		Name:         "Landscape (16:9)",
		Width:        1920,
		Height:       1080,
		Label:        "YouTube",
		Container:    "webm",
		VideoBitrate: "8M",
		AudioBitrate: "128k",
	})
}
