package news

// Keyword vocabulary for Indonesian market headlines, tiered by weight.
// Derived from IDX news phrasing; these are scoring inputs, not config.

const (
	weightStrong = 20
	weightPlain  = 10
	weightMild   = 5
)

func loadPositiveStrong() []string {
	return []string{
		"rekor", "melesat", "booming", "ekspansi besar", "akuisisi",
		"dividen jumbo", "laba bersih naik",
	}
}

func loadPositivePlain() []string {
	return []string{
		"laba", "naik", "ekspansi", "dividen", "borong", "untung",
		"tumbuh", "kinerja positif", "buyback", "rights issue",
	}
}

func loadPositiveMild() []string {
	return []string{
		"stabil", "optimis", "prospek", "potensi", "peluang", "target",
	}
}

func loadNegativeStrong() []string {
	return []string{
		"bangkrut", "kolaps", "skandal", "fraud", "suspend",
		"delisting", "rugi besar",
	}
}

func loadNegativePlain() []string {
	return []string{
		"rugi", "turun", "merosot", "anjlok", "phk", "tutup",
		"gagal", "krisis",
	}
}

func loadNegativeMild() []string {
	return []string{
		"risiko", "tantangan", "tekanan", "penurunan", "koreksi",
	}
}

// Social-buzz markers: retail chatter rather than directional news.
func loadBuzzWords() []string {
	return []string{"viral", "trending", "ramai", "fomo", "cuan"}
}

// Recency markers in published labels that indicate a same-day item.
func loadFreshnessMarkers() []string {
	return []string{"menit", "jam", "baru saja"}
}

// Default noise phrases; listicles and market-wide roundups carry no
// per-ticker signal. Overridable from config.
func DefaultNoisePhrases() []string {
	return []string{
		"rekomendasi saham",
		"daftar saham",
		"ihsg hari ini",
		"saham pilihan",
		"top gainers",
		"top losers",
	}
}
