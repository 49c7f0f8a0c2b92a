package address

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "parenthetical and comma suffix removed, spacing regularized",
			in:   "서울 강남구 테헤란로  152 (강남파이낸스센터), 1층",
			want: "서울 강남구 테헤란로 152",
		},
		{
			name: "known city typo fixed",
			in:   "서을특별시 중구 세종대로 110",
			want: "서울특별시 중구 세종대로 110",
		},
		{
			name: "question marks become spaces",
			in:   "서울특별시?종로구?삼청로 30",
			want: "서울특별시 종로구 삼청로 30",
		},
		{
			name: "district present without region gets seoul prefix",
			in:   "강남구 개포로 617",
			want: "서울특별시 강남구 개포로 617",
		},
		{
			name: "no district and no region gets national prefix",
			in:   "어딘가길 12",
			want: "대한민국 어딘가길 12",
		},
		{
			name: "region already present keeps prefix",
			in:   "부산광역시 해운대구 우동 1408",
			want: "부산광역시 해운대구 우동 1408",
		},
		{
			name: "dong and number separated",
			in:   "서울특별시 노원구 하계1동255",
			want: "서울특별시 노원구 하계1동 255",
		},
		{
			name: "road and number separated",
			in:   "서울특별시 노원구 동일로112길 72",
			want: "서울특별시 노원구 동일로 112길 72",
		},
		{
			name: "sub road suffix stays joined",
			in:   "서울특별시 노원구 동일로 136 나길 12",
			want: "서울특별시 노원구 동일로136나길 12",
		},
		{
			name: "mountain lot spaced",
			in:   "서울특별시 관악구 신림동 산48-4",
			want: "서울특별시 관악구 신림동 산 48-4",
		},
		{
			name: "double district collapsed",
			in:   "서울특별시 중구 용산구 한강대로 405",
			want: "서울특별시 용산구 한강대로 405",
		},
		{
			name: "underground token stripped",
			in:   "서울특별시 동작구 동작대로 지하 189",
			want: "서울특별시 동작구 동작대로 189",
		},
		{
			name: "standalone interior token stripped",
			in:   "서울특별시 송파구 올림픽로 240 내",
			want: "서울특별시 송파구 올림픽로 240",
		},
		{
			name: "standalone floor token stripped",
			in:   "서울특별시 중구 세종대로 110 층",
			want: "서울특별시 중구 세종대로 110",
		},
		{
			name: "interior syllable inside a name survives",
			in:   "서울특별시 서초구 내곡동 1-744",
			want: "서울특별시 서초구 내곡동 1-744",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "whitespace only input",
			in:   "   \t  ",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"서울 강남구 테헤란로  152 (강남파이낸스센터), 1층",
		"강남구 개포로 617",
		"어딘가길 12",
		"서울특별시 노원구 동일로 136 나길 12",
		"서울특별시 관악구 신림동 산48-4",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestAreaTokens(t *testing.T) {
	city, gu, dong := AreaTokens("서울특별시 노원구 하계1동 255")
	if city != "서울특별시" {
		t.Errorf("city = %q", city)
	}
	if gu != "노원구" {
		t.Errorf("gu = %q", gu)
	}
	if dong != "하계1동" {
		t.Errorf("dong = %q", dong)
	}

	city, gu, dong = AreaTokens("테헤란로 152")
	if city != "" || gu != "" || dong != "" {
		t.Errorf("expected empty tokens, got %q %q %q", city, gu, dong)
	}
}

func TestContainsLandmark(t *testing.T) {
	if !ContainsLandmark("서울역 앞") {
		t.Error("expected station to be a landmark")
	}
	if !ContainsLandmark("보라매공원") {
		t.Error("expected park to be a landmark")
	}
	if ContainsLandmark("서울특별시 강남구 테헤란로 152") {
		t.Error("plain road address should not be a landmark")
	}
}

func TestVariants(t *testing.T) {
	cleaned := "서울특별시 노원구 하계1동 255"
	vs := Variants(cleaned)
	if len(vs) == 0 {
		t.Fatal("expected at least one variant")
	}
	for _, v := range vs {
		if v == cleaned {
			t.Fatalf("variant equals input: %q", v)
		}
	}

	found := false
	for _, v := range vs {
		if v == "서울특별시 노원구 하계1동255" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected joined dong variant, got %v", vs)
	}
}
