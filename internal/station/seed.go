package station

// Seed returns the curated station list served when the directory upstream
// is unreachable. The records mirror real directory entries; click counts
// are inflated so they sort first under the popularity ordering.
func Seed() []Station {
	seeds := []Station{
		{
			UUID:        "c1192563-f8bd-4f65-b1b4-d2b8ab01cd7a",
			Name:        "Metropolis 103.9 FM",
			URL:         "https://audio1stream.com/8022/stream",
			URLResolved: "https://audio1stream.com/8022/stream",
			Homepage:    "https://metropolis1039fm.com/",
			Tags:        "pop,news,talk,top40,local",
			Country:     "Venezuela",
			CountryCode: "VE",
			State:       "Zulia",
			Language:    "spanish",
			Votes:       999,
			Codec:       "AAC",
			Bitrate:     128,
			ClickCount:  999,
		},
		{
			UUID:        "2a7e2d8e-a204-4ef4-93d6-ebf6f34da3c7",
			Name:        "La Chiquinquireña 90.9 FM",
			URL:         "https://server6.globalhostla.com:8098/stream",
			URLResolved: "https://server6.globalhostla.com:8098/stream",
			Homepage:    "https://tufm909.com/",
			Tags:        "latin,pop,salsa,merengue,local",
			Country:     "Venezuela",
			CountryCode: "VE",
			State:       "Zulia",
			Language:    "spanish",
			Votes:       998,
			Codec:       "MP3",
			Bitrate:     128,
			ClickCount:  998,
		},
	}

	for i := range seeds {
		seeds[i].Normalize()
	}
	return seeds
}
