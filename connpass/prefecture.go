package connpass

import "fmt"

// Prefecture is a region filter for event searches. The set is closed:
// the 47 prefectures of Japan plus PrefectureOnline.
type Prefecture string

const (
	PrefectureOnline    Prefecture = "online"
	PrefectureHokkaido  Prefecture = "hokkaido"
	PrefectureAomori    Prefecture = "aomori"
	PrefectureIwate     Prefecture = "iwate"
	PrefectureMiyagi    Prefecture = "miyagi"
	PrefectureAkita     Prefecture = "akita"
	PrefectureYamagata  Prefecture = "yamagata"
	PrefectureFukushima Prefecture = "fukushima"
	PrefectureIbaraki   Prefecture = "ibaraki"
	PrefectureTochigi   Prefecture = "tochigi"
	PrefectureGunma     Prefecture = "gunma"
	PrefectureSaitama   Prefecture = "saitama"
	PrefectureChiba     Prefecture = "chiba"
	PrefectureTokyo     Prefecture = "tokyo"
	PrefectureKanagawa  Prefecture = "kanagawa"
	PrefectureYamanashi Prefecture = "yamanashi"
	PrefectureNagano    Prefecture = "nagano"
	PrefectureNiigata   Prefecture = "niigata"
	PrefectureToyama    Prefecture = "toyama"
	PrefectureIshikawa  Prefecture = "ishikawa"
	PrefectureFukui     Prefecture = "fukui"
	PrefectureGifu      Prefecture = "gifu"
	PrefectureShizuoka  Prefecture = "shizuoka"
	PrefectureAichi     Prefecture = "aichi"
	PrefectureMie       Prefecture = "mie"
	PrefectureShiga     Prefecture = "shiga"
	PrefectureKyoto     Prefecture = "kyoto"
	PrefectureOsaka     Prefecture = "osaka"
	PrefectureHyogo     Prefecture = "hyogo"
	PrefectureNara      Prefecture = "nara"
	PrefectureWakayama  Prefecture = "wakayama"
	PrefectureTottori   Prefecture = "tottori"
	PrefectureShimane   Prefecture = "shimane"
	PrefectureOkayama   Prefecture = "okayama"
	PrefectureHiroshima Prefecture = "hiroshima"
	PrefectureYamaguchi Prefecture = "yamaguchi"
	PrefectureTokushima Prefecture = "tokushima"
	PrefectureKagawa    Prefecture = "kagawa"
	PrefectureEhime     Prefecture = "ehime"
	PrefectureKochi     Prefecture = "kochi"
	PrefectureFukuoka   Prefecture = "fukuoka"
	PrefectureSaga      Prefecture = "saga"
	PrefectureNagasaki  Prefecture = "nagasaki"
	PrefectureKumamoto  Prefecture = "kumamoto"
	PrefectureOita      Prefecture = "oita"
	PrefectureMiyazaki  Prefecture = "miyazaki"
	PrefectureKagoshima Prefecture = "kagoshima"
	PrefectureOkinawa   Prefecture = "okinawa"
)

// Prefectures lists every region code, PrefectureOnline first and the rest
// in the conventional north-to-south order.
var Prefectures = []Prefecture{
	PrefectureOnline,
	PrefectureHokkaido, PrefectureAomori, PrefectureIwate, PrefectureMiyagi,
	PrefectureAkita, PrefectureYamagata, PrefectureFukushima, PrefectureIbaraki,
	PrefectureTochigi, PrefectureGunma, PrefectureSaitama, PrefectureChiba,
	PrefectureTokyo, PrefectureKanagawa, PrefectureYamanashi, PrefectureNagano,
	PrefectureNiigata, PrefectureToyama, PrefectureIshikawa, PrefectureFukui,
	PrefectureGifu, PrefectureShizuoka, PrefectureAichi, PrefectureMie,
	PrefectureShiga, PrefectureKyoto, PrefectureOsaka, PrefectureHyogo,
	PrefectureNara, PrefectureWakayama, PrefectureTottori, PrefectureShimane,
	PrefectureOkayama, PrefectureHiroshima, PrefectureYamaguchi, PrefectureTokushima,
	PrefectureKagawa, PrefectureEhime, PrefectureKochi, PrefectureFukuoka,
	PrefectureSaga, PrefectureNagasaki, PrefectureKumamoto, PrefectureOita,
	PrefectureMiyazaki, PrefectureKagoshima, PrefectureOkinawa,
}

var prefectureSet = func() map[Prefecture]bool {
	set := make(map[Prefecture]bool, len(Prefectures))
	for _, p := range Prefectures {
		set[p] = true
	}
	return set
}()

// WireValue returns the query parameter value for p.
func (p Prefecture) WireValue() string { return string(p) }

// Valid reports whether p is one of the known region codes.
func (p Prefecture) Valid() bool { return prefectureSet[p] }

// ParsePrefecture returns the Prefecture for a wire value.
func ParsePrefecture(s string) (Prefecture, error) {
	p := Prefecture(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown prefecture %q", s)
	}
	return p, nil
}
