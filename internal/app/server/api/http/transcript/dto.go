package transcript

import "studynotes/internal/domain/transcript"

type fetchInput struct {
	URL      string `query:"url" required:"true" minLength:"1" doc:"Ссылка на видео или его идентификатор"`
	Language string `query:"lang" maxLength:"16" doc:"Предпочитаемый язык субтитров"`
}

type fetchOutput struct {
	Body *transcript.Transcript
}
