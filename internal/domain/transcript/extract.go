package transcript

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

const playerResponseMarker = "ytInitialPlayerResponse"

var titleTagRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		LengthSeconds string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	Captions struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
	Name         struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
}

func (t captionTrack) isAuto() bool {
	return t.Kind == "asr"
}

// extractJSONObject находит маркер и возвращает JSON-объект, следующий за ним.
// Скобки внутри строковых литералов и экранированные кавычки не учитываются.
func extractJSONObject(page, marker string) ([]byte, error) {
	idx := strings.Index(page, marker)
	if idx < 0 {
		return nil, fmt.Errorf("%w: marker %q not found", ErrParse, marker)
	}
	start := strings.IndexByte(page[idx+len(marker):], '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: no object after %q", ErrParse, marker)
	}
	start += idx + len(marker)

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(page); i++ {
		c := page[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(page[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unbalanced braces after %q", ErrParse, marker)
}

func parsePlayerResponse(page string) (*playerResponse, error) {
	raw, err := extractJSONObject(page, playerResponseMarker)
	if err != nil {
		return nil, err
	}
	var pr playerResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("%w: player response: %v", ErrParse, err)
	}
	return &pr, nil
}

// pageTitle берет заголовок из <title>, если в player response его нет.
func pageTitle(page string) string {
	m := titleTagRe.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	title := strings.TrimSpace(html.UnescapeString(m[1]))
	return strings.TrimSpace(strings.TrimSuffix(title, " - YouTube"))
}

func lengthSeconds(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// chooseTrack выбирает дорожку: точное совпадение языка, затем совпадение
// по префиксу (en и en-US), затем первая ручная, затем первая любая.
func chooseTrack(tracks []captionTrack, lang string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang != "" {
		for _, t := range tracks {
			if strings.EqualFold(t.LanguageCode, lang) {
				return t, true
			}
		}
		base := languageBase(lang)
		for _, t := range tracks {
			if languageBase(strings.ToLower(t.LanguageCode)) == base {
				return t, true
			}
		}
	}
	for _, t := range tracks {
		if !t.isAuto() {
			return t, true
		}
	}
	return tracks[0], true
}

func languageBase(code string) string {
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		return code[:i]
	}
	return code
}

type timedText struct {
	XMLName xml.Name        `xml:"transcript"`
	Texts   []timedTextNode `xml:"text"`
}

type timedTextNode struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

// parseTimedText разбирает XML субтитров в сегменты.
// Текст внутри <text> экранирован дважды, поэтому после xml-декодера
// применяется html.UnescapeString.
func parseTimedText(data []byte) ([]Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("%w: timed text: %v", ErrParse, err)
	}

	segments := make([]Segment, 0, len(tt.Texts))
	for _, node := range tt.Texts {
		text := collapseSpaces(html.UnescapeString(node.Body))
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(node.Start, 64)
		dur, _ := strconv.ParseFloat(node.Dur, 64)
		segments = append(segments, Segment{Start: start, Duration: dur, Text: text})
	}
	return segments, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinSegments склеивает сегменты через один пробел.
func JoinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
