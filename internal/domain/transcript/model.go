package transcript

import "time"

// Segment одна строка субтитров
type Segment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Transcript расшифровка видео, собранная из дорожки субтитров
type Transcript struct {
	VideoID  string        `json:"video_id"`
	Title    string        `json:"title"`
	Author   string        `json:"author,omitempty"`
	Duration time.Duration `json:"duration"`
	Language string        `json:"language"`
	Segments []Segment     `json:"segments"`
	Text     string        `json:"text"`
}
