// Package recommend implements the weather-conditioned recommendation
// engines: restaurant suggestions keyed off the weather condition text, and
// restroom facility search with weather-dependent category priorities.
package recommend

import (
	"strings"

	"tenki/internal/types"
)

// GenreEntry maps one weather type onto restaurant genre codes and a
// localized recommendation reason. Keywords are matched case-insensitively
// as substrings of the weather condition text.
type GenreEntry struct {
	WeatherType string
	Primary     string
	Secondary   string
	Keywords    []string
	Reason      map[types.Locale]string
}

// genreTable is the ordered weather-type to genre mapping. Matching is
// first-match-wins over the table order, then over keyword order within an
// entry. The final entry is the keywordless default.
//
// Genre codes are the restaurant provider's: G016 okonomiyaki, G006
// Italian/French, G004 Japanese, G014 cafe, G002 dining bar, G005 Western,
// G017 Korean, G007 Chinese, G001 izakaya, G012 bar, G015 other, G011
// karaoke/party.
var genreTable = []GenreEntry{
	{
		WeatherType: "clear",
		Primary:     "G016",
		Secondary:   "G006",
		Keywords:    []string{"晴", "晴天", "快晴", "clear sky", "晴朗"},
		Reason: map[types.Locale]string{
			types.LocaleJapanese: "お天気が良いので、テラス席でイタリアンやお好み焼き、BBQなど屋外気分を楽しめるお店がおすすめです",
			types.LocaleEnglish:  "Perfect weather for terrace dining, BBQ, and casual outdoor restaurants",
			types.LocaleChinese:  "天气晴朗，推荐有露台座位、烧烤等轻松的户外用餐场所",
		},
	},
	{
		WeatherType: "rain",
		Primary:     "G004",
		Secondary:   "G014",
		Keywords:    []string{"雨", "小雨", "大雨", "弱いにわか雨", "強い雨", "light rain", "moderate rain", "heavy rain", "shower"},
		Reason: map[types.Locale]string{
			types.LocaleJapanese: "雨の日は温かい和食や熱々のラーメン、ゆったりできるカフェで過ごしませんか",
			types.LocaleEnglish:  "Rainy weather calls for warm Japanese cuisine, hot ramen, or cozy cafes",
			types.LocaleChinese:  "雨天适合享用温暖的日式料理、热腾腾的拉面或在咖啡厅悠闲度过",
		},
	},
	{
		WeatherType: "clouds",
		Primary:     "G002",
		Secondary:   "G005",
		Keywords:    []string{"雲", "薄い雲", "厚い雲", "曇りがち", "few clouds", "scattered clouds", "broken clouds", "overcast clouds"},
		Reason: map[types.Locale]string{
			types.LocaleJapanese: "曇りの日は定番の洋食やダイニングバー、新感覚の創作料理で新しい発見を楽しみましょう",
			types.LocaleEnglish:  "Cloudy weather is perfect for classic Western cuisine, dining bars, or creative dishes",
			types.LocaleChinese:  "阴天适合享用经典西餐、餐酒吧或创意料理",
		},
	},
	{
		WeatherType: "snow",
		Primary:     "G017",
		Secondary:   "G007",
		Keywords:    []string{"雪", "吹雪", "snow", "blizzard", "sleet"},
		Reason: map[types.Locale]string{
			types.LocaleJapanese: "寒い雪の日は辛い韓国料理や温かい中華、スパイシーなアジア料理で体を温めましょう",
			types.LocaleEnglish:  "Cold snowy weather is perfect for spicy Korean, warm Chinese, or Asian cuisine",
			types.LocaleChinese:  "雪天适合享用温暖的韩式料理、中华料理或亚洲料理",
		},
	},
	{
		WeatherType: "mist",
		Primary:     "G001",
		Secondary:   "G012",
		Keywords:    []string{"霧", "靄", "霞", "mist", "fog", "haze"},
		Reason: map[types.Locale]string{
			types.LocaleJapanese: "霧の幻想的な日は落ち着いた居酒屋やバー、異国情緒あふれる各国料理でゆっくり過ごしませんか",
			types.LocaleEnglish:  "Misty weather creates a perfect atmosphere for traditional izakaya, bars, or international cuisine",
			types.LocaleChinese:  "雾天适合在传统居酒屋、酒吧或各国料理店悠闲用餐",
		},
	},
	{
		WeatherType: "default",
		Primary:     "G015",
		Secondary:   "G011",
		Keywords:    nil,
		Reason: map[types.Locale]string{
			types.LocaleJapanese: "今日はその他グルメやカラオケ・パーティで楽しい時間をお過ごしください",
			types.LocaleEnglish:  "Enjoy diverse gourmet options or karaoke dining today",
			types.LocaleChinese:  "今天推荐各种美食或卡拉OK聚餐",
		},
	},
}

// ClassifyWeather maps a weather condition text onto its genre entry.
// Unmatched conditions get the default entry.
func ClassifyWeather(condition string) GenreEntry {
	lowered := strings.ToLower(condition)
	for _, entry := range genreTable {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return entry
			}
		}
	}
	return genreTable[len(genreTable)-1]
}

// LocalizedReason returns the entry's reason in the given locale, falling
// back to Japanese.
func (e GenreEntry) LocalizedReason(locale types.Locale) string {
	if reason, ok := e.Reason[locale]; ok {
		return reason
	}
	return e.Reason[types.LocaleJapanese]
}
