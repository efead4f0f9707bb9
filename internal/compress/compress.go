package compress

import (
	"log"
	"math"

	"github.com/h2non/bimg"

	"safarhub/internal/domain"
)

const (
	// DefaultBudget — жесткий байтовый бюджет для изображений (1 MiB)
	DefaultBudget = 1 << 20

	maxWidth       = 1920 // максимальная ширина после сжатия
	startQuality   = 85
	qualityStep    = 10
	minQuality     = 60
	maxPasses      = 5
	safetyQuality  = 70  // качество страховочного прохода
	safetyShrink   = 0.9 // уменьшение сторон на страховочном проходе
	pngCompression = 9
)

// Result — результат прогона изображения через конвейер сжатия
type Result struct {
	Data   []byte
	Width  int
	Height int
	// Compressed равен false, если вернули исходные байты как есть
	// (файл уже в бюджете либо декодирование не удалось)
	Compressed bool
}

// Image приводит изображение к байтовому бюджету с сохранением пропорций.
// Формат вывода подбирается под формат входа; на страховочном проходе
// допускается принудительный JPEG. Ошибки декодирования не фатальны —
// возвращаются исходные байты.
func Image(data []byte, budget int) (*Result, error) {
	size, err := bimg.NewImage(data).Size()
	if err != nil {
		log.Printf("[Compress] Не удалось декодировать изображение, отдаем оригинал: %v", err)
		return &Result{Data: data}, nil
	}

	// Файл уже в бюджете — не пережимаем, чтобы не терять качество
	if len(data) <= budget {
		return &Result{Data: data, Width: size.Width, Height: size.Height}, nil
	}

	outType := outputType(bimg.DetermineImageType(data))

	targetWidth := size.Width
	targetHeight := size.Height
	if targetWidth > maxWidth {
		targetHeight = int(math.Round(float64(size.Height) * float64(maxWidth) / float64(size.Width)))
		targetWidth = maxWidth
	}

	var out []byte
	quality := startQuality
	for pass := 0; pass < maxPasses; pass++ {
		opts := bimg.Options{
			Width:         targetWidth,
			Height:        targetHeight,
			Quality:       quality,
			Type:          outType,
			StripMetadata: true,
		}
		if outType == bimg.PNG {
			opts.Compression = pngCompression
		}

		out, err = bimg.NewImage(data).Process(opts)
		if err != nil {
			log.Printf("[Compress] Ошибка кодирования (quality=%d), отдаем оригинал: %v", quality, err)
			return &Result{Data: data}, nil
		}

		if len(out) <= budget || quality <= minQuality {
			break
		}
		quality -= qualityStep
	}

	// Страховочный проход: уменьшаем стороны на 10% и кодируем в JPEG.
	// Соответствие бюджету важнее сохранения формата.
	if len(out) > budget {
		targetWidth = int(float64(targetWidth) * safetyShrink)
		targetHeight = int(float64(targetHeight) * safetyShrink)

		out, err = bimg.NewImage(data).Process(bimg.Options{
			Width:         targetWidth,
			Height:        targetHeight,
			Quality:       safetyQuality,
			Type:          bimg.JPEG,
			StripMetadata: true,
		})
		if err != nil {
			log.Printf("[Compress] Ошибка страховочного прохода, отдаем оригинал: %v", err)
			return &Result{Data: data}, nil
		}

		if len(out) > budget {
			return nil, &domain.BudgetExceededError{
				OriginalSize: int64(len(data)),
				Budget:       int64(budget),
			}
		}
	}

	return &Result{
		Data:       out,
		Width:      targetWidth,
		Height:     targetHeight,
		Compressed: true,
	}, nil
}

// outputType выбирает кодировщик по формату входа; неизвестные форматы
// кодируются как JPEG
func outputType(in bimg.ImageType) bimg.ImageType {
	switch in {
	case bimg.PNG:
		return bimg.PNG
	case bimg.WEBP:
		return bimg.WEBP
	default:
		return bimg.JPEG
	}
}
