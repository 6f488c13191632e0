package sync

import "fmt"

// Direction направление синхронизации
type Direction string

const (
	DirectionUpload   Direction = "upload"
	DirectionDownload Direction = "download"
	DirectionBoth     Direction = "both"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionUpload, DirectionDownload, DirectionBoth:
		return d, nil
	case "":
		return DirectionBoth, nil
	}
	return "", fmt.Errorf("unknown sync direction %q", s)
}

func (d Direction) Uploads() bool   { return d == DirectionUpload || d == DirectionBoth }
func (d Direction) Downloads() bool { return d == DirectionDownload || d == DirectionBoth }

const (
	folderWeight = 0.3
	noteWeight   = 0.7
)

// Progress счетчики одного прохода синхронизации
type Progress struct {
	Direction Direction

	FoldersUploaded      int
	TotalFoldersToUpload int
	NotesUploaded        int
	TotalNotesToUpload   int

	FoldersDownloaded      int
	TotalFoldersToDownload int
	NotesDownloaded        int
	TotalNotesToDownload   int
}

// ProgressFunc вызывается после каждого примененного пакета
type ProgressFunc func(Progress)

// FolderProgress доля завершенной работы по папкам
func (p Progress) FolderProgress() float64 {
	return p.category(
		ratio(p.FoldersUploaded, p.TotalFoldersToUpload),
		ratio(p.FoldersDownloaded, p.TotalFoldersToDownload),
	)
}

// NoteProgress доля завершенной работы по заметкам
func (p Progress) NoteProgress() float64 {
	return p.category(
		ratio(p.NotesUploaded, p.TotalNotesToUpload),
		ratio(p.NotesDownloaded, p.TotalNotesToDownload),
	)
}

// Overall взвешенный прогресс: папки 30%, заметки 70%.
func (p Progress) Overall() float64 {
	return folderWeight*p.FolderProgress() + noteWeight*p.NoteProgress()
}

// Percent прогресс в целых процентах
func (p Progress) Percent() int {
	return int(p.Overall()*100 + 0.5)
}

func (p Progress) category(upload, download float64) float64 {
	switch p.Direction {
	case DirectionUpload:
		return upload
	case DirectionDownload:
		return download
	default:
		return (upload + download) / 2
	}
}

// ratio пустая категория считается завершенной
func ratio(done, total int) float64 {
	if total <= 0 {
		return 1
	}
	r := float64(done) / float64(total)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

func (p Progress) String() string {
	return fmt.Sprintf("%d%% (folders %d/%d up, %d/%d down; notes %d/%d up, %d/%d down)",
		p.Percent(),
		p.FoldersUploaded, p.TotalFoldersToUpload,
		p.FoldersDownloaded, p.TotalFoldersToDownload,
		p.NotesUploaded, p.TotalNotesToUpload,
		p.NotesDownloaded, p.TotalNotesToDownload,
	)
}
