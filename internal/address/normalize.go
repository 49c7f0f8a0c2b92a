// Package address normalizes raw Korean address strings into a canonical
// form that maximizes the hit rate of downstream geocoding lookups.
// Everything here is a pure string transform: no I/O, no external calls.
package address

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	commaTailRe  = regexp.MustCompile(`,.*$`)
	parenRe      = regexp.MustCompile(`\(.*?\)`)

	// Underground/entrance/parking noise tokens that confuse address lookups.
	// Matched only when space-delimited so syllables inside real names survive.
	noiseTokenRe = regexp.MustCompile(`(^|\s)(지하\s*\d+층|지상\s*\d+층|지하|지상|B\d+|\d+층|출구|입구|나들목|교통광장|공영주차장|주차장|내|층)(\s|$)`)

	// 하계1동255 → 하계1동 255
	dongNumberRe = regexp.MustCompile(`([가-힣A-Za-z0-9]+동)([0-9산-])`)
	// 산48-4 → 산 48-4
	mountainLotRe = regexp.MustCompile(`산\s*([0-9]+-?[0-9]*)`)
	// 동일로112길 → 동일로 112길
	roadNumberRe = regexp.MustCompile(`(로|길|대로|로길)(\d)`)
	// 동일로 136 나길 → 동일로136나길 (sub-road suffixes stay joined)
	subRoadJoinRe = regexp.MustCompile(`(로|길|대로)\s?(\d+)\s?([나라다마바사아자차카타파하])길`)

	regionRe   = regexp.MustCompile(`서울|부산|인천|대구|대전|광주|울산|경기|강원|충청|전라|경상|제주|세종|대한민국|한국`)
	districtRe = regexp.MustCompile(`[가-힣A-Za-z]+구`)

	cityTokenRe = regexp.MustCompile(`서울특별시|서울|부산광역시|부산|인천광역시|인천|대구광역시|대구|대전광역시|대전|광주광역시|광주|울산광역시|울산|세종특별자치시|세종|경기도|강원도|충청북도|충북|충청남도|충남|전라북도|전북|전라남도|전남|경상북도|경북|경상남도|경남|제주특별자치도|제주`)
	guTokenRe   = regexp.MustCompile(`[가-힣A-Za-z]+구`)
	dongTokenRe = regexp.MustCompile(`[가-힣A-Za-z0-9]+동`)

	landmarkRe = regexp.MustCompile(`역|공원|시장|광장|체육|자연공원|보도육교`)

	variantSubRoadJoinRe = regexp.MustCompile(`(로|대로)\s+(\d+)([나라다마바사아자차카타파하])길`)
	variantDongJoinRe    = regexp.MustCompile(`([가-힣0-9]+동)\s+([0-9산-]+)`)
	variantDongSpaceRe   = regexp.MustCompile(`([가-힣0-9]+동)\s*([0-9]+-?[0-9]*)`)
)

// Normalize turns a raw address into its canonical form. An empty or
// whitespace-only input yields "", which callers must treat as
// unnormalizable: skip geocoding and persist with a null coordinate.
func Normalize(raw string) string {
	a := strings.TrimSpace(raw)
	if a == "" {
		return ""
	}

	// Known typos and noise characters.
	a = strings.ReplaceAll(a, "서을특별시", "서울특별시")
	a = strings.ReplaceAll(a, "?", " ")
	a = whitespaceRe.ReplaceAllString(a, " ")

	// Double-district artifacts seen in the source exports.
	a = strings.ReplaceAll(a, "중구 용산구", "용산구")
	a = strings.ReplaceAll(a, "용산구 중구", "용산구")

	// Trailing descriptions after a comma and parenthesized notes.
	a = commaTailRe.ReplaceAllString(a, "")
	a = parenRe.ReplaceAllString(a, "")

	// Underground/entrance/parking tokens; run twice so adjacent tokens
	// separated by a single shared space are both caught.
	a = noiseTokenRe.ReplaceAllString(a, " ")
	a = noiseTokenRe.ReplaceAllString(a, " ")

	a = dongNumberRe.ReplaceAllString(a, "${1} ${2}")
	a = mountainLotRe.ReplaceAllString(a, "산 ${1}")
	a = roadNumberRe.ReplaceAllString(a, "${1} ${2}")
	a = subRoadJoinRe.ReplaceAllString(a, "${1}${2}${3}길")

	a = strings.TrimSpace(whitespaceRe.ReplaceAllString(a, " "))
	if a == "" {
		return ""
	}

	// Prefix a region when the string carries no top-level administrative
	// unit: Seoul if a district token is present, else the national prefix.
	if !regionRe.MatchString(a) {
		if districtRe.MatchString(a) {
			a = "서울특별시 " + a
		} else {
			a = "대한민국 " + a
		}
	}

	return a
}

// AreaTokens extracts the city/district/neighborhood tokens of an address.
// Missing tokens come back as empty strings.
func AreaTokens(addr string) (city, gu, dong string) {
	city = cityTokenRe.FindString(addr)
	gu = guTokenRe.FindString(addr)
	dong = dongTokenRe.FindString(addr)
	return city, gu, dong
}

// ContainsLandmark reports whether the address references a point of
// interest (station, park, market, square and similar), which makes a
// keyword search worth attempting.
func ContainsLandmark(addr string) bool {
	return landmarkRe.MatchString(addr)
}

// Variants generates alternate spacing/joining renditions of a normalized
// address for geocoder retries. The input itself is never included.
func Variants(cleaned string) []string {
	seen := map[string]bool{cleaned: true}
	var out []string

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	// '로 75나길' → '로75나길' and '동 256-4' → '동256-4'
	joined := variantSubRoadJoinRe.ReplaceAllString(cleaned, "${1}${2}${3}길")
	joined = variantDongJoinRe.ReplaceAllString(joined, "${1}${2}")
	add(joined)

	// '동256-4' → '동 256-4'
	add(variantDongSpaceRe.ReplaceAllString(cleaned, "${1} ${2}"))

	return out
}
